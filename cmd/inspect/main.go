// Command inspect prints what a songbook data directory contains: every
// stored song with its parsed metadata, and the search index document
// count so drift between store and index is visible at a glance.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"songbook/pkg/index"
	"songbook/pkg/song"
	"songbook/pkg/store"
)

func main() {
	data := flag.String("data", "data", "data root directory")
	verbose := flag.Bool("v", false, "print full song bodies")
	flag.Parse()

	st, err := store.Open(filepath.Join(*data, "songs"))
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	ids, err := st.List()
	if err != nil {
		log.Fatalf("list songs: %v", err)
	}

	for _, id := range ids {
		body, rerr := st.Read(id)
		if rerr != nil {
			fmt.Printf("%s\t<unreadable: %v>\n", id, rerr)
			continue
		}
		meta := song.Parse(body)
		fmt.Printf("%s\t%s - %s\n", id, meta.Title, meta.Artist)
		if *verbose {
			fmt.Println(body)
		}
	}
	fmt.Printf("%d songs stored\n", len(ids))

	ix, err := index.Open(filepath.Join(*data, "index"))
	if err != nil {
		log.Fatalf("open index: %v", err)
	}
	defer ix.Close()
	count, err := ix.DocCount()
	if err != nil {
		log.Fatalf("doc count: %v", err)
	}
	fmt.Printf("%d songs indexed\n", count)
}

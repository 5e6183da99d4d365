package banner

import (
	"fmt"

	"songbook/pkg/config"
)

const banner = `
███████╗ ██████╗ ███╗   ██╗ ██████╗ ██████╗  ██████╗  ██████╗ ██╗  ██╗
██╔════╝██╔═══██╗████╗  ██║██╔════╝ ██╔══██╗██╔═══██╗██╔═══██╗██║ ██╔╝
███████╗██║   ██║██╔██╗ ██║██║  ███╗██████╔╝██║   ██║██║   ██║█████╔╝
╚════██║██║   ██║██║╚██╗██║██║   ██║██╔══██╗██║   ██║██║   ██║██╔═██╗
███████║╚██████╔╝██║ ╚████║╚██████╔╝██████╔╝╚██████╔╝╚██████╔╝██║  ██╗
╚══════╝ ╚═════╝ ╚═╝  ╚═══╝ ╚═════╝ ╚═════╝  ╚═════╝  ╚═════╝ ╚═╝  ╚═╝
`

// Print writes the startup banner with the effective configuration.
func Print(cfg *config.Config, version string, pendingActivation bool) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:    %s\n", cfg.Addr())
	fmt.Printf("Data root: %s\n", cfg.Storage.DataRoot)
	fmt.Printf("Songs:     %s\n", cfg.SongsPath())
	fmt.Printf("Index:     %s\n", cfg.IndexPath())
	fmt.Printf("Web root:  %s\n", cfg.Storage.WebRoot)
	if version != "" {
		fmt.Printf("Version:   %s\n", version)
	}
	if pendingActivation {
		fmt.Println("\nThe administrator key has not been claimed yet; it is shown")
		fmt.Println("on the home page until its first use.")
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("GET    /search/<query>  - Search songs (title, artist, free text)")
	fmt.Println("GET    /songs/<id>      - Fetch a song (text/song, text/plain, text/html)")
	fmt.Println("GET    /new             - Song entry form (admin key required)")
	fmt.Println("POST   /songs           - Create a song (admin key required)")
	fmt.Println("PUT    /songs/<id>      - Update a song (admin key required)")
	fmt.Println("DELETE /songs/<id>      - Delete a song (admin key required)")
	fmt.Println("GET    /admin/index/reset - Rebuild the search index")
}

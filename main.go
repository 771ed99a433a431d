package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ancientlore/cachefs"
	"github.com/facebookgo/flagenv"
	"github.com/golang/groupcache"
	"github.com/khaibq/my-website/content"
	"github.com/khaibq/my-website/virtual"
	"github.com/khaibq/my-website/web"
)

// main is where it all begins. 😀
func main() {
	// Setup flags
	var (
		fPort              = flag.Int("port", 8080, "Port to listen on.")
		fReadTimeout       = flag.Duration("readtimeout", 10*time.Second, "HTTP server read timeout.")
		fReadHeaderTimeout = flag.Duration("readheadertimeout", 5*time.Second, "HTTP server read header timeout.")
		fWriteTimeout      = flag.Duration("writetimeout", 30*time.Second, "HTTP server write timeout.")
		fRoot              = flag.String("root", "example", "Root of the site folder.")
		fBuild             = flag.String("build", "", "Write the site to this folder instead of serving it.")
		fCheck             = flag.Bool("check", false, "Validate the site and check for broken links, then exit.")
		fWatch             = flag.Bool("watch", false, "Reload the site when files change.")
		fCacheSize         = flag.Int64("cachesize", 10*1024*1024, "Size of the cache of rendered files in bytes.")
		fCacheDuration     = flag.Duration("cacheduration", 10*time.Second, "Time rendered files stay in the cache.")
	)
	flag.Parse()
	flagenv.Parse()

	// Load the site
	vfs, err := virtual.New(os.DirFS(*fRoot), virtual.Options{LastUpdater: lastUpdater(*fRoot)})
	if err != nil {
		log.Printf("Cannot load site %q: %s", *fRoot, err)
		os.Exit(1)
	}
	log.Printf("Loaded site %q with %d files", vfs.Config().Title, len(vfs.Routes()))

	switch {
	case *fCheck:
		if err := checkLinks(vfs, vfs.Config()); err != nil {
			log.Print(err)
			os.Exit(2)
		}
		log.Print("No problems found.")
		return
	case *fBuild != "":
		n, err := build(vfs, *fBuild)
		if err != nil {
			log.Printf("Cannot build site: %s", err)
			os.Exit(2)
		}
		log.Printf("Wrote %d files to %q", n, *fBuild)
		if err := checkLinks(os.DirFS(*fBuild), vfs.Config()); err != nil {
			log.Print(err)
			os.Exit(3)
		}
		return
	}

	// Create HTTP server
	var srv = http.Server{
		Addr:              fmt.Sprintf(":%d", *fPort),
		ReadTimeout:       *fReadTimeout,
		WriteTimeout:      *fWriteTimeout,
		ReadHeaderTimeout: *fReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Rendered files are cached unless they may change underneath
	var served fs.FS = vfs
	if *fWatch {
		go func() {
			if err := watch(ctx, *fRoot, vfs.Reload); err != nil {
				log.Printf("watch: %s", err)
			}
		}()
	} else {
		groupcache.RegisterPeerPicker(func() groupcache.PeerPicker { return groupcache.NoPeers{} })
		served = cachefs.New(vfs, &cachefs.Config{GroupName: "site", SizeInBytes: *fCacheSize, Duration: *fCacheDuration})
	}
	srv.Handler = handler(vfs, served)
	log.Print("Created handlers")

	// Shut down gracefully on interrupt
	go func() {
		<-ctx.Done()

		// We received an interrupt signal, shut down.
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			// Error from closing listeners, or context timeout:
			log.Printf("HTTP server Shutdown: %v", err)
		}
	}()

	// Listen for requests
	log.Printf("Listening for requests on %s", srv.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Printf("HTTP server: %v", err)
	} else {
		log.Print("Goodbye.")
	}
}

// handler serves the site below its base URL, and the search API next to it.
func handler(vfs *virtual.FS, served fs.FS) http.Handler {
	cfg := vfs.Config()
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	var files http.Handler = web.HeaderHandler(
		web.ExpiresHandler(
			gziphandler.GzipHandler(
				web.ErrorHandler(
					http.FileServer(
						http.FS(served),
					),
					served,
				),
			),
			time.Duration(cfg.Server.Expires),
			time.Duration(cfg.Server.StaticExpires),
		),
		cfg.Server.Headers)
	if base != "" {
		files = http.StripPrefix(base, files)
	}

	mux := http.NewServeMux()
	mux.Handle(base+"/api/search", gziphandler.GzipHandler(web.SearchHandler(vfs)))
	mux.Handle(base+"/", files)
	if base != "" {
		mux.Handle("/", http.RedirectHandler(cfg.BaseURL, http.StatusFound))
	}
	return mux
}

// lastUpdater uses the git history of the site when there is one, and file times otherwise.
func lastUpdater(root string) content.LastUpdater {
	modTime := content.ModTimeUpdater{FS: os.DirFS(root)}
	g, err := content.OpenGit(root)
	if err != nil {
		log.Printf("Using file times for last updates: %s", err)
		return modTime
	}
	return content.Chain{g, modTime}
}

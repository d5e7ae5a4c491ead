// Command aseweb serves a set of Aseprite documents for inspection in a
// browser.
//
//	aseweb -listen_address=:8080 hero.aseprite https://example.com/tiles.ase
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "golang.org/x/net/trace"

	"badc0de.net/pkg/go-aseprite/web"
)

var (
	listenAddress = flag.String("listen_address", ":8080", "http listen address for aseweb")
	cacheSize     = flag.Int("cache_size", 512, "number of encoded images kept in memory")
	loadTimeout   = flag.Duration("load_timeout", time.Minute, "how long loading all documents may take")
)

func main() {
	flagutil.Parse()

	if flag.NArg() == 0 {
		glog.Exit("usage: aseweb [flags] document...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *loadTimeout)
	lib, err := web.LoadLibrary(ctx, flag.Args())
	cancel()
	if err != nil {
		glog.Exitf("loading documents: %v", err)
	}

	h, err := web.NewHandler(lib, *cacheSize)
	if err != nil {
		glog.Exit(err)
	}

	r := mux.NewRouter()
	h.RegisterRoutes(r)
	// /debug/requests and /debug/events, registered by x/net/trace.
	r.PathPrefix("/debug/").Handler(http.DefaultServeMux)

	glog.Infof("serving %d documents on %s", len(lib.Names()), *listenAddress)
	glog.Fatal(http.ListenAndServe(*listenAddress, handlers.LoggingHandler(os.Stderr, handlers.CompressHandler(r))))
}

// Command stub runs the stand-in planning backend on localhost. Point the
// planner at it with DEV_BACKENDBASEURL=http://localhost:8000.
package main

import (
	"flag"

	"github.com/trezcool/ratiba/apps/stub/stubapi"
	"github.com/trezcool/ratiba/core"
)

func main() {
	addr := flag.String("addr", ":8000", "address to listen on")
	flag.Parse()

	conf := core.NewConfig()
	app := stubapi.NewServer(&stubapi.Options{
		Address:   *addr,
		SecretKey: []byte(conf.SecretKey),
		Debug:     conf.Debug,
	})
	app.Start()
}

package main

import (
	"fmt"
	"log"
	"os"

	"aioconf"
)

// Minimal demonstration of spec authoring, layered resolution, and
// persistence. Try:
//
//	APP_DEBUG=true go run ./example --db-port 5432
func main() {
	spec := aioconf.MustSpec([]*aioconf.Option{
		{Name: "debug", Type: aioconf.TypeBool, Default: false, EnvVar: "APP_DEBUG", CLIFlag: "--debug"},
		{Name: "listen", Type: aioconf.TypeString, Default: ":8080", EnvVar: "APP_LISTEN", CLIFlag: "--listen"},
		{Name: "tags", Type: aioconf.TypeStrings, Default: []string{"web"}, CLIFlag: "--tags"},
	}, map[string]*aioconf.Spec{
		"database": aioconf.MustSpec([]*aioconf.Option{
			{Name: "host", Type: aioconf.TypeString, Default: "localhost", EnvVar: "DB_HOST"},
			{Name: "port", Type: aioconf.TypeInt, Default: 3306, EnvVar: "DB_PORT", CLIFlag: "--db-port"},
		}, nil),
	})

	snap, err := aioconf.NewBuilder().
		WithSpec(spec).
		WithArgs(os.Args[1:]).
		WithEnviron().
		WithFileDiscovery(aioconf.DefaultDiscoveryOptions("example")).
		Resolve()
	if err != nil {
		log.Fatalf("resolve: %v", err)
	}

	debug, _ := snap.Bool("debug")
	port, _ := snap.Int64("database.port")
	fmt.Printf("debug=%v database.port=%d\n", debug, port)

	for _, p := range snap.Problems() {
		fmt.Fprintf(os.Stderr, "warning: %v\n", p)
	}

	if err := snap.SaveINI("resolved.ini"); err != nil {
		log.Fatalf("save: %v", err)
	}
}

// Command cli is the scorekeeper admin tool. It reads the same configuration
// as the server and operates on its database directly:
//
//	cli [server flags] useradd
//	cli hashpw
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/scorekeeper/internal/admin"
	"github.com/dmitrijs2005/scorekeeper/internal/flagx"
	"github.com/dmitrijs2005/scorekeeper/internal/logging"
	"github.com/dmitrijs2005/scorekeeper/internal/server"
	"github.com/dmitrijs2005/scorekeeper/internal/server/config"
	"github.com/dmitrijs2005/scorekeeper/internal/server/services"
)

var valueFlags = []string{"-a", "-b", "-d", "-s", "-t", "-k", "-w", "-l", "-c", "-config"}

func main() {

	if err := run(context.Background(), os.Args[1:]); err != nil {
		if !errors.Is(err, admin.ErrUsage) {
			log.Printf("%v", err)
		}
		os.Exit(1)
	}

}

func run(ctx context.Context, argv []string) error {
	cfg := config.LoadConfig()
	args := flagx.Positional(argv, valueFlags)

	logger := logging.NewJSONLogger(os.Stderr, "warn")

	var users admin.UserService
	if len(args) > 0 && args[0] == "useradd" {
		db, rm, err := server.OpenDatabase(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		keys, verifier, err := server.NewAuth(cfg)
		if err != nil {
			return err
		}
		users = services.NewUserService(db, rm, keys, verifier, cfg, logger)
	}

	app := admin.NewApp(users, cfg.BcryptCost, os.Stdin, os.Stdout)
	return app.Run(ctx, args)
}

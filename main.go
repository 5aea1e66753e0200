// tagsvc serves the tag graph for posts in a media-sharing platform:
// applying/removing tags, inheritance edges, ownership, and the lookup
// and aggregation views clients read back.
//
//	@title			tagsvc API
//	@version		1.0
//	@description	Tag microservice: apply, remove, and look up tags on posts.
//
//	@host		localhost:8000
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and JWT token.
package main

import (
	"log"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/kheina-com/tagsvc/cmd"
	pgxdb "github.com/kheina-com/tagsvc/internal/db/pgx"
	"github.com/kheina-com/tagsvc/pkg/logger"
)

func main() {
	if len(os.Args) > 1 {
		cmd.Execute()
		return
	}

	defer func() {
		pgxdb.Close()
		logger.Log.Sync()
	}()

	nopLog := func(string, ...interface{}) {}
	if _, err := maxprocs.Set(maxprocs.Logger(nopLog)); err != nil {
		log.Fatalf("cannot set maxprocs: %v", err)
	}

	os.Args = []string{os.Args[0], "server"}
	cmd.Execute()
}

package relgraph

import "embed"

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate -path views
//go:generate go run github.com/sqlc-dev/sqlc/cmd/sqlc@v1.30.0 generate -f internal/db/sqlc.yaml

// PublicFS holds the static assets served under /public/.
//
//go:embed public
var PublicFS embed.FS

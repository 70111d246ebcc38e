package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/relgraph/views/pages"
)

func (v *ViewRoutes) handleHome(c echo.Context) error {
	return c.Render(http.StatusOK, "", pages.QueryPage(pages.QueryPageData{
		StreamPath:  "/query/stream",
		InitialText: strings.TrimSpace(c.QueryParam("q")),
	}))
}

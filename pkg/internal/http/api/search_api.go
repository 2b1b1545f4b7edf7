package api

import (
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/http/exts"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services/queries"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// logQuery records the query for suggestions, a failure never fails the search.
func (v *Controller) logQuery(c *fiber.Ctx, query string) {
	if err := services.LogSearchQuery(c.UserContext(), v.db, query); err != nil && !services.IsKind(err, services.KindValidation) {
		log.Warn().Err(err).Str("query", query).Msg("Unable to record search query...")
	}
}

func (v *Controller) searchPosts(c *fiber.Ctx) error {
	query := c.Query("query")
	page, err := queries.SearchPosts(c.UserContext(), v.db, v.searcher, query, exts.ViewerOf(c), exts.PageRequestOf(c, queries.DefaultPageLimit))
	if err != nil {
		return err
	}
	v.logQuery(c, query)
	return exts.OK(c, page, "Posts fetched successfully")
}

func (v *Controller) searchUsers(c *fiber.Ctx) error {
	query := c.Query("query")
	page, err := queries.SearchUsers(c.UserContext(), v.db, v.searcher, query, exts.ViewerOf(c), exts.PageRequestOf(c, queries.DefaultPageLimit))
	if err != nil {
		return err
	}
	v.logQuery(c, query)
	return exts.OK(c, page, "Users fetched successfully")
}

func (v *Controller) searchGroups(c *fiber.Ctx) error {
	query := c.Query("query")
	page, err := queries.SearchGroups(c.UserContext(), v.db, v.searcher, query, exts.ViewerOf(c), exts.PageRequestOf(c, queries.DefaultPageLimit))
	if err != nil {
		return err
	}
	v.logQuery(c, query)
	return exts.OK(c, page, "Groups fetched successfully")
}

func (v *Controller) searchSuggestions(c *fiber.Ctx) error {
	items, err := queries.SearchSuggestions(c.UserContext(), v.db, c.Query("query"))
	if err != nil {
		return err
	}
	return exts.OK(c, items, "Suggestions fetched successfully")
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/furniture-catalog/internal/handler"
)

// Catalog bundles the catalog handlers and the response cache middleware.
type Catalog struct {
	Categories *handler.CategoryHandler
	Brands     *handler.BrandHandler
	Products   *handler.ProductHandler
	Cache      echo.MiddlewareFunc // public reads
	Invalidate echo.MiddlewareFunc // admin writes
}

// RegisterCatalog registers /category, /brands and /products.  Reads are
// public and cached; writes need the admin role and retire the cache.
func RegisterCatalog(api *echo.Group, c Catalog, g Guards) {
	type crud struct {
		list, get, create, update, del echo.HandlerFunc
	}
	routes := map[string]crud{
		"category": {c.Categories.List, c.Categories.Get, c.Categories.Create, c.Categories.Update, c.Categories.Delete},
		"brands":   {c.Brands.List, c.Brands.Get, c.Brands.Create, c.Brands.Update, c.Brands.Delete},
		"products": {c.Products.List, c.Products.Get, c.Products.Create, c.Products.Update, c.Products.Delete},
	}
	for prefix, r := range routes {
		public := api.Group(prefix, c.Cache)
		public.GET("", r.list)
		public.GET("/:id", r.get)

		admin := api.Group(prefix, append(g.admin(), c.Invalidate)...)
		admin.POST("", r.create)
		admin.PUT("/:id", r.update)
		admin.DELETE("/:id", r.del)
	}
}

package internal

import (
	"net/http"
	"sensordigest/internal/controllers"
	"sensordigest/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Any("/exec", http.HandlerFunc(apiController.Exec), http.MethodGet, http.MethodPost)
	routers.Post("/sweep", http.HandlerFunc(apiController.Sweep))
	routers.Get("/preview", http.HandlerFunc(apiController.Preview))
	return routers
}

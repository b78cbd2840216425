package seats

import (
	"seatkeeper/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller, apiToken string) {

	// LOOKUPS

	seats := rg.Group("/structures/:structureId/seats")
	{
		seats.GET("/free", controller.GetFreeSeats)           // GET /api/v1/structures/:structureId/seats/free?date=&time=
		seats.POST("/covering", controller.FindCoveringSeats) // POST /api/v1/structures/:structureId/seats/covering
	}

	// BOOKING

	booking := rg.Group("/structures/:structureId/seats")
	booking.Use(middleware.RequireAPIToken(apiToken))
	{
		booking.POST("/autobook", controller.AutoBook) // POST /api/v1/structures/:structureId/seats/autobook
	}
}

package main

import (
	"log"
	"net/http"
	"sbs/src/db"
	"sbs/src/inventory"
	"sbs/src/lib"
	"sbs/src/models"
	"sbs/src/types"
	"sbs/src/utils"

	"github.com/gin-gonic/gin"
)

func eventHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/events", func(ctx *gin.Context) {
			var body types.CreateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			id, err := utils.CreateNewEvent(&body)
			if err != nil {
				log.Printf("error creating event: %s", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": id})
		}).
		GET("/events/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			conn := db.GetDb()
			var event models.Event
			if err := conn.
				Where("id = ?", params.ID).
				First(&event).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		}).
		GET("/events/:id/seats", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			conn := db.GetDb()
			var seats []models.EventSeat
			if err := conn.
				Where("event_id = ?", params.ID).
				Preload("Seat").
				Find(&seats).
				Error; err != nil {
				log.Printf("Error retrieving seat map for event %d: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": seats, "count": len(seats)})
		}).
		GET("/events/:id/availability", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if count, ok := lib.GetCachedAvailability(ctx.Request.Context(), params.ID); ok {
				ctx.JSON(http.StatusOK, gin.H{"available": count, "cached": true})
				return
			}
			conn := db.GetDb()
			count, err := inventory.CountAvailable(conn, params.ID)
			if err != nil {
				log.Printf("Error counting availability for event %d: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			// Cached before responding so a later invalidation cannot be
			// overwritten by this read.
			lib.CacheAvailability(ctx.Request.Context(), params.ID, count)
			ctx.JSON(http.StatusOK, gin.H{"available": count})
		})
	return g
}

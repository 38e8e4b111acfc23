package main

import (
	"log"
	"net/http"
	"sbs/src/db"
	"sbs/src/models"
	"sbs/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func venueHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/venues", func(ctx *gin.Context) {
			var body types.CreateVenueRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			venue := models.Venue{
				Name:     body.Name,
				Location: body.Location,
			}
			conn := db.GetDb()
			if err := conn.Create(&venue).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": venue.ID})
		}).
		POST("/venues/:id/seats", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CreateSeatsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			conn := db.GetDb()
			var ids []uint
			err := conn.Transaction(func(tx *gorm.DB) error {
				var venue models.Venue
				if err := tx.Where("id = ?", params.ID).First(&venue).Error; err != nil {
					return err
				}
				seats := make([]models.Seat, 0, len(body.Seats))
				for _, s := range body.Seats {
					seats = append(seats, models.Seat{
						VenueID:    venue.ID,
						Section:    s.Section,
						RowNumber:  s.RowNumber,
						SeatNumber: s.SeatNumber,
						BasePrice:  s.BasePrice,
					})
				}
				if err := tx.Create(&seats).Error; err != nil {
					return err
				}
				for _, s := range seats {
					ids = append(ids, s.ID)
				}
				return nil
			})
			if err != nil {
				log.Printf("Error creating seats for venue %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"ids": ids, "count": len(ids)})
		}).
		GET("/venues/:id/seats", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			conn := db.GetDb()
			var seats []models.Seat
			if err := conn.
				Where("venue_id = ?", params.ID).
				Order("section, row_number, seat_number").
				Find(&seats).
				Error; err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": seats, "count": len(seats)})
		})
	return g
}

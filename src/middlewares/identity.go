package middlewares

import (
	"log"
	"net/http"
	"sbs/src/db"
	"sbs/src/models"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Identity resolves the calling user from the X-User-ID header set by the
// auth layer in front of this service. Authentication itself happens
// upstream; this only binds the request to a known user row.
func Identity(ctx *gin.Context) {
	header := ctx.Request.Header.Get("X-User-ID")
	if header == "" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	uid, err := strconv.Atoi(header)
	if err != nil || uid < 1 {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn := db.GetDb()
	var user models.User
	if err := conn.Where("id = ?", uint(uid)).First(&user).Error; err != nil {
		log.Printf("Unknown user %d: %s\n", uid, err.Error())
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ctx.Set("id", user.ID)
	ctx.Set("email", user.Email)
	ctx.Next()
}

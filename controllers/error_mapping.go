package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kasirapp/pos-backend/services"
	"github.com/kasirapp/pos-backend/utils"
)

// respondServiceError memetakan error bertipe dari services ke status HTTP:
// validasi -> 400, transisi ilegal -> 409, reference tak dikenal -> 404,
// kalah race sampai batas retry -> 503.
func respondServiceError(c *gin.Context, err error) {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var transition *services.InvalidTransition
	if errors.As(err, &transition) {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}

	var unknown *services.UnknownReference
	if errors.As(err, &unknown) {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var conflict *services.ConcurrencyConflict
	if errors.As(err, &conflict) {
		utils.RespondError(c, http.StatusServiceUnavailable, err)
		return
	}

	utils.RespondError(c, http.StatusInternalServerError, err)
}

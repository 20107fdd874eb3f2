package api

import (
	"net/http"
	"strconv"

	"feewatch/internal/model"
	"feewatch/internal/store"
	"github.com/gin-gonic/gin"
)

type SeriesResponse[R any] struct {
	Feed    model.Feed `json:"feed"`
	Count   int        `json:"count"`
	Records []R        `json:"records"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// fromQuery reads the optional ?from= block filter.
func fromQuery(c *gin.Context) (uint64, bool, error) {
	raw, ok := c.GetQuery("from")
	if !ok {
		return 0, false, nil
	}
	from, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return from, true, nil
}

func seriesHandler[R store.Record[R]](series *store.Series[R]) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, filtered, err := fromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "from must be a non-negative block number"})
			return
		}

		var records []R
		if filtered {
			records = series.Since(from)
		} else {
			records = series.Snapshot()
		}
		if records == nil {
			records = []R{}
		}

		c.JSON(http.StatusOK, SeriesResponse[R]{
			Feed:    series.Feed(),
			Count:   len(records),
			Records: records,
		})
	}
}

func healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

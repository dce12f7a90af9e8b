// internal/backend/server.go
package backend

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type thresholdBody struct {
	ThresholdCm *int `json:"threshold_cm"`
}

type measurementBody struct {
	DistanceCm *int `json:"distancia_cm"`
}

// NewRouter builds the bench backend: configuration, measurement log and
// a health check, all served from st.
func NewRouter(st *Store, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// access log, UTC RFC3339
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":   "distalert backend online",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	router.GET("/config", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"threshold_cm": st.Threshold()})
	})

	router.POST("/config", func(c *gin.Context) {
		var body thresholdBody
		if err := c.ShouldBindJSON(&body); err != nil || body.ThresholdCm == nil || *body.ThresholdCm == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "parameter 'threshold_cm' is required"})
			return
		}
		if *body.ThresholdCm < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "parameter 'threshold_cm' must be positive"})
			return
		}

		st.SetThreshold(*body.ThresholdCm)
		logger.Sugar().Infow("threshold set", "threshold_cm", *body.ThresholdCm)
		c.JSON(http.StatusOK, gin.H{"message": "configuration saved", "threshold_cm": *body.ThresholdCm})
	})

	router.POST("/logs", func(c *gin.Context) {
		var body measurementBody
		if err := c.ShouldBindJSON(&body); err != nil || body.DistanceCm == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "parameter 'distancia_cm' is required"})
			return
		}

		id := st.AddLog(*body.DistanceCm)
		c.JSON(http.StatusCreated, gin.H{"message": "log saved", "id": id})
	})

	router.GET("/logs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"logs": st.Logs()})
	})

	return router
}

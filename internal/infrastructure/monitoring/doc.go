/*
Package monitoring provides Prometheus metrics for the desktop core.

# Overview

Tracks HTTP requests, window registry operations, application instance
states, input routing, session persistence, and WebSocket connections.
Each Metrics instance owns its own prometheus.Registry so tests can
construct collectors in isolation.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record domain metrics
	metrics.WindowsLive.Inc()
	metrics.GesturesRecognized.WithLabelValues("tap").Inc()

# Metrics Endpoint

Expose metrics via the instance registry:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
*/
package monitoring

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRoutes) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>wanderlist - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "wanderlist", "version": "v0.1.0" },
  "components": {
    "securitySchemes": {
      "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "OIDC ID token" },
      "session": { "type": "apiKey", "in": "cookie", "name": "wanderlist_session" }
    }
  },
  "paths": {
    "/login": { "get": { "summary": "Start OIDC login", "responses": { "302": { "description": "redirect to the identity provider" } } } },
    "/auth": {
      "get": {
        "summary": "OIDC callback",
        "parameters": [
          { "name": "code", "in": "query", "schema": { "type": "string" } },
          { "name": "state", "in": "query", "schema": { "type": "string" } }
        ],
        "responses": { "302": { "description": "session created" }, "400": { "description": "state mismatch or expired login" }, "401": { "description": "login failed" } }
      }
    },
    "/logout": { "get": { "summary": "End the session", "responses": { "302": { "description": "logged out" } } } },
    "/search": {
      "post": {
        "summary": "Save preferences and show places",
        "requestBody": { "content": { "application/x-www-form-urlencoded": { "schema": {"type":"object","properties":{"name":{"type":"string"},"destination":{"type":"string"},"interests":{"type":"array","items":{"type":"string"}},"food":{"type":"array","items":{"type":"string"}}},"required":["destination","interests"]}}}},
        "responses": { "200": { "description": "results page" }, "400": { "description": "form re-rendered with a message" } }
      }
    },
    "/api/v1/me": {
      "get": { "summary": "Current user", "security": [{"bearer": []}, {"session": []}], "responses": { "200": { "description": "user" }, "401": { "description": "not authenticated" } } }
    },
    "/api/v1/preference": {
      "get": { "summary": "Stored preference of the current user", "security": [{"bearer": []}, {"session": []}], "responses": { "200": { "description": "preference" }, "404": { "description": "none saved" }, "401": { "description": "not authenticated" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`

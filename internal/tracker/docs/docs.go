// Package docs registers the OpenAPI document of the tracker API with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/track": {
            "post": {
                "description": "Upserts the tracked product, appends a snapshot and evaluates insight and alerts",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Record a price observation",
                "parameters": [
                    {"type": "string", "description": "Owner identity", "name": "X-Owner-ID", "in": "header", "required": true},
                    {"description": "Observation", "name": "observation", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.Observation"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.IngestResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/products/{id}": {
            "delete": {
                "description": "Soft-deletes the product; history is kept and a later observation reactivates it",
                "tags": ["products"],
                "summary": "Stop tracking a product",
                "parameters": [
                    {"type": "string", "description": "Owner identity", "name": "X-Owner-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Tracked product ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/products/{id}/interval": {
            "patch": {
                "description": "Rejected with 409 while the next scheduled run is closer than the new interval",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Change the refresh interval of a product",
                "parameters": [
                    {"type": "string", "description": "Owner identity", "name": "X-Owner-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Tracked product ID", "name": "id", "in": "path", "required": true},
                    {"description": "Interval in hours", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateIntervalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProductScheduleResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/products/{id}/insight": {
            "post": {
                "produces": ["application/json"],
                "tags": ["insights"],
                "summary": "Compute and store an insight",
                "parameters": [
                    {"type": "string", "description": "Owner identity", "name": "X-Owner-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Tracked product ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/entity.AIInsight"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/products/{id}/insight/latest": {
            "get": {
                "produces": ["application/json"],
                "tags": ["insights"],
                "summary": "Get the latest stored insight",
                "parameters": [
                    {"type": "string", "description": "Owner identity", "name": "X-Owner-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Tracked product ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/entity.AIInsight"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/insights/refresh": {
            "post": {
                "description": "Failures are isolated per product and reported in the result",
                "produces": ["application/json"],
                "tags": ["insights"],
                "summary": "Recompute insights for every active product",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RefreshResult"}}
                }
            }
        },
        "/products/{id}/alerts": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["alerts"],
                "summary": "Arm a target-price alert",
                "parameters": [
                    {"type": "string", "description": "Owner identity", "name": "X-Owner-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Tracked product ID", "name": "id", "in": "path", "required": true},
                    {"description": "Alert", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateAlertRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/entity.PriceEvent"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/alerts/pending": {
            "get": {
                "produces": ["application/json"],
                "tags": ["alerts"],
                "summary": "List triggered, unacknowledged alerts",
                "parameters": [
                    {"type": "string", "description": "Owner identity", "name": "X-Owner-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Maximum number of alerts", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/entity.PriceEvent"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/alerts/{id}/ack": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["alerts"],
                "summary": "Acknowledge a triggered alert",
                "parameters": [
                    {"type": "string", "description": "Owner identity", "name": "X-Owner-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Alert ID", "name": "id", "in": "path", "required": true},
                    {"description": "Acknowledgement source", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/dto.AckAlertRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.Observation": {
            "type": "object",
            "required": ["marketplace", "url"],
            "properties": {
                "url": {"type": "string"},
                "marketplace": {"type": "string"},
                "title": {"type": "string"},
                "image_url": {"type": "string"},
                "price_raw": {"type": "string"},
                "availability": {"type": "string"},
                "source": {"type": "string", "enum": ["extension", "monitor"]}
            }
        },
        "dto.InsightSummary": {
            "type": "object",
            "properties": {
                "recommendation": {"type": "string"},
                "summary": {"type": "string"}
            }
        },
        "dto.IngestResult": {
            "type": "object",
            "properties": {
                "tracked_product_id": {"type": "integer"},
                "snapshot_id": {"type": "integer"},
                "url": {"type": "string"},
                "title": {"type": "string"},
                "price": {"type": "number"},
                "currency": {"type": "string"},
                "availability": {"type": "string"},
                "availability_changed": {"type": "boolean"},
                "previous_availability": {"type": "string"},
                "next_run_at": {"type": "string"},
                "created": {"type": "boolean"},
                "insight": {"$ref": "#/definitions/dto.InsightSummary"}
            }
        },
        "dto.UpdateIntervalRequest": {
            "type": "object",
            "required": ["hours"],
            "properties": {
                "hours": {"type": "integer", "maximum": 24, "minimum": 1}
            }
        },
        "dto.ProductScheduleResponse": {
            "type": "object",
            "properties": {
                "tracked_product_id": {"type": "integer"},
                "update_interval": {"type": "integer"},
                "last_scraped_at": {"type": "string"},
                "next_run_at": {"type": "string"}
            }
        },
        "dto.CreateAlertRequest": {
            "type": "object",
            "required": ["target_price"],
            "properties": {
                "target_price": {"type": "number"},
                "message": {"type": "string"}
            }
        },
        "dto.AckAlertRequest": {
            "type": "object",
            "properties": {
                "source": {"type": "string"}
            }
        },
        "dto.RefreshResult": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "succeeded": {"type": "integer"},
                "failed": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "entity.AIInsight": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "product_id": {"type": "integer"},
                "snapshot_count": {"type": "integer"},
                "window_days": {"type": "integer"},
                "last_price": {"type": "number"},
                "min_price": {"type": "number"},
                "max_price": {"type": "number"},
                "avg_price": {"type": "number"},
                "volatility": {"type": "number"},
                "slope": {"type": "number"},
                "pct_change_7d": {"type": "number"},
                "pct_change_30d": {"type": "number"},
                "trend": {"type": "string"},
                "anomaly": {"type": "string"},
                "recommendation": {"type": "string"},
                "confidence": {"type": "number"},
                "suggested_alert_price": {"type": "number"},
                "explanation": {"type": "string"},
                "explanation_facts": {"type": "array", "items": {"type": "string"}},
                "created_at": {"type": "string"}
            }
        },
        "entity.PriceEvent": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "product_id": {"type": "integer"},
                "url": {"type": "string"},
                "marketplace": {"type": "string"},
                "title": {"type": "string"},
                "target_price": {"type": "number"},
                "triggered": {"type": "boolean"},
                "triggered_at": {"type": "string"},
                "acknowledged": {"type": "boolean"},
                "ack_source": {"type": "string"},
                "event_type": {"type": "string"},
                "message": {"type": "string"},
                "created_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Price Tracker API",
	Description:      "Ingests marketplace price observations and serves insights and price alerts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

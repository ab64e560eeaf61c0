package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Inventopia API",
        "description": "Inventory catalog, stock ledger, and item request workflow API",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Products", "description": "Catalog and stock operations"},
        {"name": "Requests", "description": "Item request lifecycle"}
    ],
    "paths": {
        "/products": {
            "get": {
                "tags": ["Products"],
                "summary": "List catalog products",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "tags": ["Products"],
                "summary": "Get one product",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/products/{id}/stock": {
            "post": {
                "tags": ["Products"],
                "summary": "Apply a stock operation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdjustStockRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Insufficient stock or concurrent change"}
                }
            }
        },
        "/products/{id}/movements": {
            "get": {
                "tags": ["Products"],
                "summary": "List a product's stock movements",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests": {
            "get": {
                "tags": ["Requests"],
                "summary": "List requests visible to the caller",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "user_id", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Requests"],
                "summary": "Open a new draft request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRequestRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/{id}": {
            "get": {
                "tags": ["Requests"],
                "summary": "Get one request with its lines",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/{id}/movements": {
            "get": {
                "tags": ["Requests"],
                "summary": "List the stock movements a request produced",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/{id}/items": {
            "put": {
                "tags": ["Requests"],
                "summary": "Edit a draft's lines",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DraftItemsUpdate"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate product or staged item conflict"}
                }
            }
        },
        "/requests/{id}/submit": {
            "post": {
                "tags": ["Requests"],
                "summary": "Submit a draft for review",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/requests/{id}/actions": {
            "post": {
                "tags": ["Requests"],
                "summary": "Dispatch an approval action",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RequestAction"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Insufficient stock, invalid transition, or action in progress"}
                }
            }
        },
        "/requests/{id}/fulfill": {
            "post": {
                "tags": ["Requests"],
                "summary": "Mark an approved request as handed out",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition"}
                }
            }
        }
    },
    "definitions": {
        "Product": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "sku": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "stock_quantity": {"type": "integer"},
                "min_stock_level": {"type": "integer"},
                "max_stock_level": {"type": "integer"},
                "status": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "StockMovement": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "product_id": {"type": "string"},
                "kind": {"type": "string"},
                "amount": {"type": "integer"},
                "quantity_before": {"type": "integer"},
                "quantity_after": {"type": "integer"},
                "reason": {"type": "string"},
                "notes": {"type": "string"},
                "actor_id": {"type": "string"},
                "request_id": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "ItemRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "request_number": {"type": "string"},
                "user_id": {"type": "string"},
                "note": {"type": "string"},
                "admin_note": {"type": "string"},
                "status": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "approved_at": {"type": "string"},
                "details": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/RequestDetail"}
                }
            }
        },
        "RequestDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "request_id": {"type": "string"},
                "product_id": {"type": "string"},
                "requested_quantity": {"type": "integer"},
                "approved_quantity": {"type": "integer"},
                "status": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "AdjustStockRequest": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["ADD", "SUBTRACT", "SET"]},
                "amount": {"type": "integer"},
                "reason": {"type": "string"},
                "notes": {"type": "string"}
            },
            "required": ["kind", "reason"]
        },
        "CreateRequestRequest": {
            "type": "object",
            "properties": {
                "note": {"type": "string"},
                "item": {"$ref": "#/definitions/NewItem"}
            }
        },
        "NewItem": {
            "type": "object",
            "properties": {
                "product_id": {"type": "string"},
                "quantity": {"type": "integer"}
            },
            "required": ["product_id", "quantity"]
        },
        "DraftItemsUpdate": {
            "type": "object",
            "properties": {
                "set_quantities": {"type": "object"},
                "remove": {"type": "array", "items": {"type": "string"}},
                "add": {"$ref": "#/definitions/NewItem"},
                "note": {"type": "string"}
            }
        },
        "RequestAction": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["approve", "partial_approve", "reject", "cancel"]},
                "quantities": {"type": "object"},
                "note": {"type": "string"}
            },
            "required": ["action"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "ref": {"type": "string"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}

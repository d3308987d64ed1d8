package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Scholarship Portal API",
        "description": "Scholarship application lifecycle service",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Registration and login"},
        {"name": "Scholarships", "description": "Scholarship catalog"},
        {"name": "Applications", "description": "Application lifecycle"},
        {"name": "Dashboard", "description": "Aggregate statistics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a student account",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failed or duplicate username/email"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate and obtain an access token",
                "responses": {
                    "200": {"description": "Token issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/v1/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user claims",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/api/v1/scholarships": {
            "get": {
                "tags": ["Scholarships"],
                "summary": "List active scholarships",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/scholarships/{id}": {
            "get": {
                "tags": ["Scholarships"],
                "summary": "Fetch a scholarship",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/api/v1/applications": {
            "post": {
                "tags": ["Applications"],
                "summary": "Submit an application",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failed"},
                    "404": {"description": "Unknown scholarship"}
                }
            },
            "get": {
                "tags": ["Applications"],
                "summary": "List applications by owner or status",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/applications/{id}/status": {
            "patch": {
                "tags": ["Applications"],
                "summary": "Transition an application through the lifecycle",
                "responses": {
                    "200": {"description": "Updated"},
                    "400": {"description": "Validation failed"},
                    "403": {"description": "Wrong bureau for this transition"},
                    "404": {"description": "Not found"},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/api/v1/applications/export": {
            "get": {
                "tags": ["Applications"],
                "summary": "Export a status-scoped listing as CSV or PDF",
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/api/v1/applications/{id}/sanction-letter": {
            "get": {
                "tags": ["Applications"],
                "summary": "Download the sanction letter for a funded application",
                "responses": {
                    "200": {"description": "PDF"},
                    "412": {"description": "Application not funded"}
                }
            }
        },
        "/api/v1/applications/{id}/sanction-letter/link": {
            "get": {
                "tags": ["Applications"],
                "summary": "Issue a signed, time-limited download link for a sanction letter",
                "responses": {
                    "200": {"description": "Link issued"},
                    "412": {"description": "Application not funded or links disabled"}
                }
            }
        },
        "/letters/{token}": {
            "get": {
                "tags": ["Applications"],
                "summary": "Download an archived sanction letter through a signed link",
                "responses": {
                    "200": {"description": "PDF"},
                    "401": {"description": "Invalid or expired link"},
                    "404": {"description": "Letter not found"}
                }
            }
        },
        "/api/v1/dashboard/stats": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Aggregate application statistics",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
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
                "status": {"type": "integer"}
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

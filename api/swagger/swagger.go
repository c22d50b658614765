package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Thesis Defense API",
        "description": "Scheduling and admission control for thesis-defense sessions",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Terms", "description": "Academic term management"},
        {"name": "Teachers", "description": "Faculty roster management"},
        {"name": "Students", "description": "Graduate student records"},
        {"name": "Sessions", "description": "Defense session scheduling and admission"},
        {"name": "Directory", "description": "Scheduling-time availability queries"}
    ],
    "paths": {
        "/terms": {
            "get": {
                "tags": ["Terms"],
                "summary": "List terms",
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "half", "in": "query", "type": "string", "enum": ["FIRST", "SECOND"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Terms"],
                "summary": "Create term",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TermPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Term already exists for year and half"}
                }
            }
        },
        "/terms/{id}": {
            "get": {
                "tags": ["Terms"],
                "summary": "Get term",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Terms"],
                "summary": "Update term",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TermPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "412": {"description": "Term has sessions and cannot be modified"}
                }
            },
            "delete": {
                "tags": ["Terms"],
                "summary": "Delete term",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}, "412": {"description": "Term has sessions associated"}}
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List teachers",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "degree", "in": "query", "type": "string", "enum": ["MASTER", "PHD"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Teachers"],
                "summary": "Create teacher",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeacherPayload"}}
                ],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Unique field collision"}}
            }
        },
        "/teachers/{id}": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Get teacher",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Teachers"],
                "summary": "Update teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeacherPayload"}}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Teachers"],
                "summary": "Delete teacher",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}, "412": {"description": "Teacher serves in scheduled sessions"}}
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["CURRENT", "DEFENDED"]},
                    {"name": "degreeLevel", "in": "query", "type": "string", "enum": ["MASTER", "PHD"]},
                    {"name": "admissionYear", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentPayload"}}
                ],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Student number already registered"}}
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/students/{id}/status": {
            "patch": {
                "tags": ["Students"],
                "summary": "Update student status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentStatusPayload"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List sessions",
                "parameters": [
                    {"name": "termId", "in": "query", "type": "string"},
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "classroom", "in": "query", "type": "string"},
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "concluded", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Submit session",
                "description": "Admit a session draft atomically against the term schedule or reject it with the first violated rule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionPayload"}}
                ],
                "responses": {
                    "201": {"description": "Admitted"},
                    "400": {"description": "Incomplete fields or invalid time range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Scheduling conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/check": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Check session draft",
                "description": "Dry-run the admission rules without persisting anything",
                "parameters": [
                    {"name": "excludeSessionId", "in": "query", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionPayload"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Get session",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Sessions"],
                "summary": "Update session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionPayload"}}
                ],
                "responses": {
                    "200": {"description": "Re-admitted"},
                    "409": {"description": "Scheduling conflict"},
                    "412": {"description": "Session already concluded"}
                }
            },
            "delete": {
                "tags": ["Sessions"],
                "summary": "Delete session",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/sessions/{id}/conclude": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Conclude session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConcludePayload"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/directory/eligible-teachers": {
            "get": {
                "tags": ["Directory"],
                "summary": "List eligible teachers",
                "parameters": [
                    {"name": "term_id", "in": "query", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "start_time", "in": "query", "required": true, "type": "string"},
                    {"name": "end_time", "in": "query", "required": true, "type": "string"},
                    {"name": "exclude_session_id", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "TermPayload": {
            "type": "object",
            "required": ["year", "half", "start_date", "end_date"],
            "properties": {
                "year": {"type": "integer"},
                "half": {"type": "string", "enum": ["FIRST", "SECOND"]},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"}
            }
        },
        "TeacherPayload": {
            "type": "object",
            "required": ["first_name", "last_name", "email", "national_code", "faculty_code", "degree"],
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "phone_number": {"type": "string"},
                "national_code": {"type": "string"},
                "faculty_code": {"type": "string"},
                "degree": {"type": "string", "enum": ["MASTER", "PHD"]}
            }
        },
        "StudentPayload": {
            "type": "object",
            "required": ["first_name", "last_name", "student_number", "degree_level", "admission_year"],
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "phone_number": {"type": "string"},
                "student_number": {"type": "string"},
                "degree_level": {"type": "string", "enum": ["MASTER", "PHD"]},
                "admission_year": {"type": "integer"}
            }
        },
        "StudentStatusPayload": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["CURRENT", "DEFENDED"]}
            }
        },
        "SessionPayload": {
            "type": "object",
            "properties": {
                "term_id": {"type": "string"},
                "date": {"type": "string", "example": "2024-11-20"},
                "start_time": {"type": "string", "example": "10:00"},
                "end_time": {"type": "string", "example": "11:00"},
                "classroom": {"type": "string", "enum": ["1", "2", "3", "4", "5", "6", "7", "8"]},
                "student_id": {"type": "string"},
                "supervisor1_id": {"type": "string"},
                "supervisor2_id": {"type": "string"},
                "supervisor3_id": {"type": "string"},
                "supervisor4_id": {"type": "string"},
                "monitor_id": {"type": "string"},
                "judge_ids": {"type": "array", "items": {"type": "string"}, "maxItems": 3},
                "description": {"type": "string"}
            }
        },
        "ConcludePayload": {
            "type": "object",
            "required": ["concluded"],
            "properties": {
                "concluded": {"type": "boolean"}
            }
        },
        "AdmissionRejection": {
            "type": "object",
            "properties": {
                "rule": {"type": "string"},
                "message": {"type": "string"},
                "conflicting_session_id": {"type": "string"},
                "conflicting_person_id": {"type": "string"},
                "conflicting_role": {"type": "string"}
            }
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
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "rejection": {"$ref": "#/definitions/AdmissionRejection"},
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

// Package http implements the HTTP handlers of the salespulse service.
// Handlers are a thin layer between HTTP transport and the analytics
// service: they decode and validate requests, call the service and render
// the result.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → AnalyticsService
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Handler Structure
//
//	func (h *AnalyticsHandler) RunForecast(w http.ResponseWriter, r *http.Request) {
//	    var req api.ForecastRequest
//	    spec, ok := h.decode(w, r, &req, &req.Filters)
//	    if !ok {
//	        return
//	    }
//	    result, err := h.service.Forecast(r.Context(), spec, params)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//	    render.JSON(w, r, api.Success(api.NewForecastResponse(result)))
//	}
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Unprocessable Entity",
//	    "status": 422,
//	    "detail": "missing required columns: Sales",
//	    "instance": "/api/v1/datasets",
//	    "error_code": "MISSING_COLUMNS"
//	}
//
// Pipeline failures carry their error code; request failures (bad JSON,
// failed field validation) carry the list of failed fields.
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of
// AnalyticsServiceInterface.
package http

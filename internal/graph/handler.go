package graph

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"

	"github.com/justsurfingit/goodjob-api/internal/middleware"
	"github.com/justsurfingit/goodjob-api/internal/services"
)

// Register mounts the GraphQL endpoint. write runs before POST requests,
// the only method that may carry a mutation.
func (s *Schema) Register(r gin.IRouter, write ...gin.HandlerFunc) {
	r.GET("/graphql", s.Handler())
	r.POST("/graphql", append(append([]gin.HandlerFunc{}, write...), s.Handler())...)
}

// Handler serves POST /graphql with a JSON body and GET /graphql with the
// query in the query string. Execution errors are reported in the response
// body with status 200. GET requests cannot run mutations.
func (s *Schema) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request
		switch c.Request.Method {
		case http.MethodGet:
			req.Query = c.Query("query")
			req.OperationName = c.Query("operationName")
			if vars := c.Query("variables"); vars != "" {
				if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "variables must be a JSON object"})
					return
				}
			}
		default:
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
				return
			}
		}
		if req.Query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
			return
		}
		if c.Request.Method == http.MethodGet && operationType(req.Query, req.OperationName) == ast.OperationTypeMutation {
			c.Header("Allow", http.MethodPost)
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "mutations must be sent with POST"})
			return
		}

		ctx := WithRequestMeta(c.Request.Context(), services.RequestMeta{
			IP:  c.ClientIP(),
			IPs: middleware.ForwardedIPs(c),
		})
		c.JSON(http.StatusOK, s.Execute(ctx, req))
	}
}

// operationType returns the type of the operation a request would run, or
// "" when the document does not parse or name a runnable operation.
func operationType(query, operationName string) string {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return ""
	}
	var ops []*ast.OperationDefinition
	for _, def := range doc.Definitions {
		if op, ok := def.(*ast.OperationDefinition); ok {
			ops = append(ops, op)
		}
	}
	for _, op := range ops {
		if operationName == "" && len(ops) == 1 {
			return op.Operation
		}
		if op.Name != nil && op.Name.Value == operationName {
			return op.Operation
		}
	}
	return ""
}

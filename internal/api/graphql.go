package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"erc20/sender/internal/models"
	"erc20/sender/internal/services"
	"erc20/sender/internal/stores"

	"github.com/graphql-go/graphql"
)

type GraphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

func NewGraphQLHandler(form *services.TransferForm, store stores.TransferStore, feed *services.Feed) http.Handler {
	schema, err := createSchema(form, store, feed)
	if err != nil {
		panic(err)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Content-Type", "application/json")

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Error reading request body", http.StatusBadRequest)
			return
		}

		var req GraphQLRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "Error parsing request body", http.StatusBadRequest)
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        r.Context(),
		})
		json.NewEncoder(w).Encode(result)
	})
}

func tokenMap(t *models.Token) map[string]interface{} {
	return map[string]interface{}{
		"id":       t.ID.Hex(),
		"symbol":   t.Symbol,
		"decimals": int(t.Decimals),
		"logo":     t.Logo,
	}
}

func formMap(s services.FormSnapshot) map[string]interface{} {
	var token interface{}
	if s.Token != nil {
		token = tokenMap(s.Token)
	}
	return map[string]interface{}{
		"receiver": s.Receiver,
		"amount":   s.Amount,
		"token":    token,
		"loading":  s.Loading,
		"pending":  s.Pending,
	}
}

func transferMap(rec *models.TransferRecord) map[string]interface{} {
	units := ""
	if rec.Units != nil {
		units = rec.Units.String()
	}
	return map[string]interface{}{
		"id":          rec.ID,
		"token":       rec.Token.Hex(),
		"symbol":      rec.Symbol,
		"receiver":    rec.Receiver.Hex(),
		"amount":      rec.Amount,
		"units":       units,
		"state":       string(rec.State),
		"blockNumber": int(rec.BlockNumber),
		"error":       rec.Error,
		"createdAt":   rec.CreatedAt.Format(time.RFC3339),
		"updatedAt":   rec.UpdatedAt.Format(time.RFC3339),
	}
}

func notificationMap(n models.Notification) map[string]interface{} {
	return map[string]interface{}{
		"id":        int(n.ID),
		"level":     string(n.Level),
		"title":     n.Title,
		"message":   n.Message,
		"createdAt": n.CreatedAt.Format(time.RFC3339),
	}
}

func createSchema(form *services.TransferForm, store stores.TransferStore, feed *services.Feed) (graphql.Schema, error) {
	tokenType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Token",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"symbol":   &graphql.Field{Type: graphql.String},
			"decimals": &graphql.Field{Type: graphql.Int},
			"logo":     &graphql.Field{Type: graphql.String},
		},
	})

	formType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Form",
		Fields: graphql.Fields{
			"receiver": &graphql.Field{Type: graphql.String},
			"amount":   &graphql.Field{Type: graphql.String},
			"token":    &graphql.Field{Type: tokenType},
			"loading":  &graphql.Field{Type: graphql.Boolean},
			"pending":  &graphql.Field{Type: graphql.String},
		},
	})

	transferType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Transfer",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"token":       &graphql.Field{Type: graphql.String},
			"symbol":      &graphql.Field{Type: graphql.String},
			"receiver":    &graphql.Field{Type: graphql.String},
			"amount":      &graphql.Field{Type: graphql.String},
			"units":       &graphql.Field{Type: graphql.String},
			"state":       &graphql.Field{Type: graphql.String},
			"blockNumber": &graphql.Field{Type: graphql.Int},
			"error":       &graphql.Field{Type: graphql.String},
			"createdAt":   &graphql.Field{Type: graphql.String},
			"updatedAt":   &graphql.Field{Type: graphql.String},
		},
	})

	notificationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Notification",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.Int},
			"level":     &graphql.Field{Type: graphql.String},
			"title":     &graphql.Field{Type: graphql.String},
			"message":   &graphql.Field{Type: graphql.String},
			"createdAt": &graphql.Field{Type: graphql.String},
		},
	})

	submitResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SubmitResult",
		Fields: graphql.Fields{
			"status": &graphql.Field{Type: graphql.String},
			"hash":   &graphql.Field{Type: graphql.String},
			"error":  &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"tokens": &graphql.Field{
				Type: graphql.NewList(tokenType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					tokens := form.Tokens()
					out := make([]interface{}, 0, len(tokens))
					for i := range tokens {
						out = append(out, tokenMap(&tokens[i]))
					}
					return out, nil
				},
			},
			"form": &graphql.Field{
				Type: formType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return formMap(form.Snapshot()), nil
				},
			},
			"transfer": &graphql.Field{
				Type: transferType,
				Args: graphql.FieldConfigArgument{
					"hash": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.String),
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					hash := p.Args["hash"].(string)
					rec, err := lookupTransfer(p.Context, store, hash)
					if errors.Is(err, stores.ErrTransferNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return transferMap(rec), nil
				},
			},
			"notifications": &graphql.Field{
				Type: graphql.NewList(notificationType),
				Args: graphql.FieldConfigArgument{
					"since": &graphql.ArgumentConfig{
						Type:         graphql.Int,
						DefaultValue: 0,
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					since, _ := p.Args["since"].(int)
					if since < 0 {
						since = 0
					}
					items := feed.Since(uint64(since))
					out := make([]interface{}, 0, len(items))
					for _, n := range items {
						out = append(out, notificationMap(n))
					}
					return out, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"updateForm": &graphql.Field{
				Type: formType,
				Args: graphql.FieldConfigArgument{
					"receiver": &graphql.ArgumentConfig{Type: graphql.String},
					"amount":   &graphql.ArgumentConfig{Type: graphql.String},
					"token":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var u services.FormUpdate
					if v, ok := p.Args["receiver"].(string); ok {
						u.Receiver = &v
					}
					if v, ok := p.Args["amount"].(string); ok {
						u.Amount = &v
					}
					if v, ok := p.Args["token"].(string); ok {
						u.Token = &v
					}
					if err := form.Update(u); err != nil {
						return nil, err
					}
					return formMap(form.Snapshot()), nil
				},
			},
			"submitTransfer": &graphql.Field{
				Type: submitResultType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					hash, err := form.Submit(p.Context)
					if err != nil {
						return map[string]interface{}{"status": "error", "error": err.Error()}, nil
					}
					return map[string]interface{}{"status": "pending", "hash": hash.Hex()}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

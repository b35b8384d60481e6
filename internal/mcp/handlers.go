package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bobmcallan/openvault-portal/internal/client"
)

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// jsonResult marshals v into a single text content block.
func jsonResult(v interface{}) *mcp.CallToolResult {
	out, err := json.Marshal(v)
	if err != nil {
		return errorResult("failed to encode result")
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(out))},
	}
}

// apiErrorResult turns a client error into a tool error the model can read.
func apiErrorResult(action string, err error) *mcp.CallToolResult {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return errorResult(action + ": session rejected by the OpenVault API, sign in again")
	case errors.Is(err, client.ErrNetwork):
		return errorResult(action + ": OpenVault API unreachable")
	case errors.As(err, &apiErr):
		return errorResult(fmt.Sprintf("%s: %s", action, apiErr.Error()))
	default:
		return errorResult(action + ": " + err.Error())
	}
}

// resolveAccount returns the account_id argument, or the first account's ID
// when the argument is omitted.
func resolveAccount(ctx context.Context, api BankingReader, request mcp.CallToolRequest) (int64, *mcp.CallToolResult) {
	if id := request.GetInt("account_id", 0); id > 0 {
		return int64(id), nil
	}

	accounts, err := api.GetAllAccounts(ctx)
	if err != nil {
		return 0, apiErrorResult("list accounts", err)
	}
	if len(accounts) == 0 {
		return 0, errorResult("no accounts available")
	}
	return accounts[0].ID, nil
}

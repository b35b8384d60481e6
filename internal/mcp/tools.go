package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/openvault-portal/internal/client"
	"github.com/bobmcallan/openvault-portal/internal/models"
	"github.com/bobmcallan/openvault-portal/internal/session"
)

// maxRecentLimit caps get_recent_transactions.
const maxRecentLimit = 50

// BankingReader is the read-only part of the OpenVault API the tools use.
type BankingReader interface {
	GetAllAccounts(ctx context.Context) ([]models.Account, error)
	GetTotalBalance(ctx context.Context) (decimal.Decimal, error)
	GetRecentTransactions(ctx context.Context, accountID int64, limit int) ([]models.Transaction, error)
	GetTransactionStats(ctx context.Context, accountID int64) (*models.TransactionStats, error)
}

var _ BankingReader = (*client.Client)(nil)

// RegisterTools adds the banking tools to s and returns how many were added.
func RegisterTools(s *server.MCPServer, api BankingReader, sessions *session.Manager) int {
	tools := []server.ServerTool{
		{Tool: sessionTool(), Handler: sessionToolHandler(sessions)},
		{Tool: listAccountsTool(), Handler: listAccountsHandler(api)},
		{Tool: totalBalanceTool(), Handler: totalBalanceHandler(api)},
		{Tool: recentTransactionsTool(), Handler: recentTransactionsHandler(api)},
		{Tool: transactionStatsTool(), Handler: transactionStatsHandler(api)},
	}
	s.AddTools(tools...)
	return len(tools)
}

func sessionTool() mcp.Tool {
	return mcp.NewTool("get_session",
		mcp.WithDescription("Get the signed-in OpenVault user: id, email, names and session expiry."),
	)
}

func sessionToolHandler(sessions *session.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		current := sessions.Current()
		if current == nil {
			return errorResult("not signed in"), nil
		}
		return jsonResult(current), nil
	}
}

func listAccountsTool() mcp.Tool {
	return mcp.NewTool("list_accounts",
		mcp.WithDescription("List the user's bank accounts with IBAN, type, balance and status."),
	)
}

func listAccountsHandler(api BankingReader) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		accounts, err := api.GetAllAccounts(ctx)
		if err != nil {
			return apiErrorResult("list accounts", err), nil
		}
		if accounts == nil {
			accounts = []models.Account{}
		}
		return jsonResult(accounts), nil
	}
}

func totalBalanceTool() mcp.Tool {
	return mcp.NewTool("get_total_balance",
		mcp.WithDescription("Get the sum of balances across all of the user's accounts, in euros."),
	)
}

func totalBalanceHandler(api BankingReader) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		total, err := api.GetTotalBalance(ctx)
		if err != nil {
			return apiErrorResult("get total balance", err), nil
		}
		return jsonResult(models.TotalBalance{TotalBalance: total}), nil
	}
}

func recentTransactionsTool() mcp.Tool {
	return mcp.NewTool("get_recent_transactions",
		mcp.WithDescription("Get the most recent transactions of an account, newest first."),
		mcp.WithNumber("account_id",
			mcp.Description("Account ID. Defaults to the user's first account."),
		),
		mcp.WithNumber("limit",
			mcp.Description("How many transactions to return (1-50, default 10)."),
		),
	)
}

func recentTransactionsHandler(api BankingReader) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		accountID, failed := resolveAccount(ctx, api, request)
		if failed != nil {
			return failed, nil
		}

		limit := request.GetInt("limit", client.DefaultRecentLimit)
		if limit <= 0 {
			limit = client.DefaultRecentLimit
		}
		if limit > maxRecentLimit {
			limit = maxRecentLimit
		}

		txs, err := api.GetRecentTransactions(ctx, accountID, limit)
		if err != nil {
			return apiErrorResult("get recent transactions", err), nil
		}
		if txs == nil {
			txs = []models.Transaction{}
		}
		return jsonResult(txs), nil
	}
}

func transactionStatsTool() mcp.Tool {
	return mcp.NewTool("get_transaction_stats",
		mcp.WithDescription("Get incoming, outgoing and transaction count totals for an account."),
		mcp.WithNumber("account_id",
			mcp.Description("Account ID. Defaults to the user's first account."),
		),
	)
}

func transactionStatsHandler(api BankingReader) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		accountID, failed := resolveAccount(ctx, api, request)
		if failed != nil {
			return failed, nil
		}

		stats, err := api.GetTransactionStats(ctx, accountID)
		if err != nil {
			return apiErrorResult("get transaction stats", err), nil
		}
		return jsonResult(stats), nil
	}
}

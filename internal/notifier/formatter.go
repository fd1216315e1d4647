package notifier

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	MsgPerformingChecks = "Performing checks..."
	MsgInstancesOnline  = "Instance(s) are online (by ssh port check)"
	MsgNoProblems       = "No problems found!"
)

// FormatFetchFailure reports a transport-level failure (connection or HTTP status).
func FormatFetchFailure(detail string) string {
	return fmt.Sprintf("Failed to fetch data: %s", detail)
}

// FormatDatabaseError reports an API status code 1.
func FormatDatabaseError(detail string) string {
	return fmt.Sprintf("Database error: %s", detail)
}

// FormatUnexpectedAPIError reports any other non-zero API status code.
func FormatUnexpectedAPIError(detail string) string {
	return fmt.Sprintf("Unexpected API error: %s", detail)
}

// FormatMalformed reports a payload that lacks the expected collection.
func FormatMalformed(key, detail string) string {
	return fmt.Sprintf("Missing or invalid %q key in response: %s", key, detail)
}

func FormatLowBalance(balance, threshold decimal.Decimal, currency string) string {
	return fmt.Sprintf("Low balance alert! Total balance: %s %s, Threshold: %s %s",
		balance.String(), currency, threshold.String(), currency)
}

func FormatOffline(orderID string) string {
	return fmt.Sprintf("Order ID %s seems to be offline.", orderID)
}

func FormatSummary(balance, spend decimal.Decimal) string {
	return fmt.Sprintf("Checked balances and spends. Total balance: %s, Total spend: %s",
		balance.String(), spend.String())
}

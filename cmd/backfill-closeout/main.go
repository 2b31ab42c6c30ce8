// backfill-closeout creates a historical safe closeout from the CLI, using
// the same deposit/variance formulas as the wizard. Intended for migrating
// paper records.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/storeops/shiftdesk_backend/config"
	"github.com/storeops/shiftdesk_backend/models"
	"github.com/storeops/shiftdesk_backend/utils"
)

func main() {
	storeId := flag.Int("store-id", 0, "Required: store id")
	managerId := flag.Int("manager-id", 0, "Required: profile id the backfill is recorded under")
	date := flag.String("date", "", "Required: business date (YYYY-MM-DD)")
	cashDollars := flag.String("cash", "0.00", "Cash sales in dollars")
	cardDollars := flag.String("card", "0.00", "Card sales in dollars")
	depositDollars := flag.String("deposit", "0.00", "Actual deposit in dollars")
	reason := flag.String("reason", "", "Variance reason (required when the deposit does not match)")
	expensesJSON := flag.String("expenses", "[]", `Expenses as JSON: [{"category":"ice","amount_cents":500}]`)
	flag.Parse()

	if *storeId == 0 || *managerId == 0 || *date == "" {
		fmt.Fprintln(os.Stderr, "--store-id, --manager-id and --date are required")
		os.Exit(1)
	}

	businessDate, err := time.Parse("2006-01-02", *date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --date: %v\n", err)
		os.Exit(1)
	}
	cashCents, err := utils.ParseDollarsToCents(*cashDollars)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --cash: %v\n", err)
		os.Exit(1)
	}
	cardCents, err := utils.ParseDollarsToCents(*cardDollars)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --card: %v\n", err)
		os.Exit(1)
	}
	depositCents, err := utils.ParseDollarsToCents(*depositDollars)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --deposit: %v\n", err)
		os.Exit(1)
	}
	var expenses []models.NewCloseoutExpense
	if err := json.Unmarshal([]byte(*expensesJSON), &expenses); err != nil {
		fmt.Fprintf(os.Stderr, "invalid --expenses: %v\n", err)
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	ctx := context.Background()
	ctx = utils.SetProfileIdInContext(ctx, *managerId)
	ctx = utils.SetIsManagerInContext(ctx, true)
	ctx = utils.SetManagedStoreIdsInContext(ctx, []int{*storeId})

	closeout, err := models.BackfillCloseout(ctx, &models.NewCloseoutBackfill{
		StoreId:        *storeId,
		BusinessDate:   businessDate,
		CashSalesCents: cashCents,
		CardSalesCents: cardCents,
		Expenses:       expenses,
		ActualDeposit:  depositCents,
		VarianceReason: *reason,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "backfill failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("closeout id=%d status=%s expected=%s actual=%s variance=%s\n",
		closeout.ID, closeout.Status,
		utils.CentsToDollarString(closeout.ExpectedDepositCents),
		utils.CentsToDollarString(closeout.ActualDepositCents),
		utils.CentsToDollarString(closeout.VarianceCents))
}

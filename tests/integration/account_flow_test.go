package integration

import (
	"net/http"
	"testing"
)

func TestAccountFlow_IncomeAndExpense(t *testing.T) {
	app := setupApp(t)
	token := app.registerUser(t, "flow@test.com", "password123")

	app.addIncome(t, token, "100.00")
	if got := app.getBalance(t, token); got != "100.00" {
		t.Fatalf("expected balance 100.00, got %s", got)
	}

	rec := app.request("POST", "/api/v1/account/expense",
		`{"amount":"30.00","description":"Groceries"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expense failed: %d %s", rec.Code, rec.Body.String())
	}
	if got := parseJSON(t, rec)["balance"].(string); got != "70.00" {
		t.Errorf("expected balance 70.00, got %s", got)
	}

	// History lists both postings oldest first with chained balances.
	rec = app.request("GET", "/api/v1/account/transactions", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	data := result["data"].([]interface{})
	if len(data) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(data))
	}

	income := data[0].(map[string]interface{})
	if income["kind"] != "income" || income["starting_balance"] != "0.00" || income["ending_balance"] != "100.00" {
		t.Errorf("unexpected income row: %v", income)
	}
	expense := data[1].(map[string]interface{})
	if expense["kind"] != "expense" || expense["starting_balance"] != "100.00" || expense["ending_balance"] != "70.00" {
		t.Errorf("unexpected expense row: %v", expense)
	}
	if expense["description"] != "Groceries" {
		t.Errorf("expected description Groceries, got %v", expense["description"])
	}
}

func TestAccountFlow_OverdraftRejected(t *testing.T) {
	app := setupApp(t)
	token := app.registerUser(t, "broke@test.com", "password123")
	app.addIncome(t, token, "20.00")

	rec := app.request("POST", "/api/v1/account/expense", `{"amount":"20.01"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	if got := app.getBalance(t, token); got != "20.00" {
		t.Errorf("expected balance unchanged at 20.00, got %s", got)
	}
	rec = app.request("GET", "/api/v1/account/transactions", "", token)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 1 {
		t.Errorf("expected 1 transaction after rejected expense, got %.0f", total)
	}
}

func TestAccountFlow_MalformedAmountRejected(t *testing.T) {
	app := setupApp(t)
	token := app.registerUser(t, "typo@test.com", "password123")

	for _, body := range []string{
		`{"amount":"abc"}`,
		`{"amount":"1e3"}`,
		`{"amount":""}`,
	} {
		rec := app.request("POST", "/api/v1/account/income", body, token)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for body %s, got %d", body, rec.Code)
		}
	}
}

func TestAccountFlow_UsersAreIsolated(t *testing.T) {
	app := setupApp(t)
	alice := app.registerUser(t, "alice@test.com", "password123")
	bob := app.registerUser(t, "bob@test.com", "password123")

	app.addIncome(t, alice, "100.00")

	if got := app.getBalance(t, bob); got != "0.00" {
		t.Errorf("expected bob's balance 0.00, got %s", got)
	}
	rec := app.request("GET", "/api/v1/account/transactions", "", bob)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 0 {
		t.Errorf("expected no transactions for bob, got %.0f", total)
	}
}

package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/switchbank/switch-ledger/internal/config"
	"github.com/switchbank/switch-ledger/internal/logging"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	cfg := config.Config{AppName: "switch-ledger-test", Env: "development", LedgerSecret: "test-secret"}
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	var decoded map[string]any
	if len(payload) > 0 && json.Unmarshal(payload, &decoded) != nil {
		decoded = map[string]any{"raw": string(payload)}
	}
	return resp.StatusCode, decoded
}

func TestLedgerFlowOverHTTP(t *testing.T) {
	app := setupTestApp(t)

	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/ledger/accounts", `{"bic":"BIC001"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("create account: expected 201, got %d (%v)", status, body)
	}
	if body["available_balance"] != "0.00" {
		t.Fatalf("expected zero opening balance, got %v", body["available_balance"])
	}

	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/ledger/accounts", `{"bic":"BIC001"}`)
	if status != fiber.StatusConflict {
		t.Fatalf("duplicate bic: expected 409, got %d", status)
	}

	status, body = doJSON(t, app, fiber.MethodPost, "/api/v1/funding/recharge", `{"bic":"BIC001","instruction_id":"ins-fund","amount":"100.00"}`)
	if status != fiber.StatusOK {
		t.Fatalf("recharge: expected 200, got %d (%v)", status, body)
	}
	if body["available_balance"] != "100.00" {
		t.Fatalf("expected 100.00 after recharge, got %v", body["available_balance"])
	}

	status, body = doJSON(t, app, fiber.MethodPost, "/api/v1/ledger/movements", `{"bic":"BIC001","instruction_id":"ins-debit","type":"DEBIT","amount":"40.00"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("debit: expected 201, got %d (%v)", status, body)
	}
	if body["available_balance"] != "60.00" {
		t.Fatalf("expected 60.00 after debit, got %v", body["available_balance"])
	}

	status, body = doJSON(t, app, fiber.MethodPost, "/api/v1/ledger/returns", `{"original_instruction_id":"ins-debit","amount":"40.00"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("return: expected 201, got %d (%v)", status, body)
	}
	if body["available_balance"] != "100.00" {
		t.Fatalf("expected 100.00 after reversal, got %v", body["available_balance"])
	}

	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/ledger/returns", `{"original_instruction_id":"ins-debit","amount":"40.00"}`)
	if status != fiber.StatusConflict {
		t.Fatalf("duplicate reversal: expected 409, got %d", status)
	}

	status, body = doJSON(t, app, fiber.MethodGet, "/api/v1/funding/available/BIC001/50.00", "")
	if status != fiber.StatusOK {
		t.Fatalf("availability: expected 200, got %d (%v)", status, body)
	}
	if body["available"] != true {
		t.Fatalf("expected availability true, got %v", body["available"])
	}
}

func TestSettlementOverHTTP(t *testing.T) {
	app := setupTestApp(t)

	if status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/ledger/accounts", `{"bic":"BIC001"}`); status != fiber.StatusCreated {
		t.Fatalf("create account failed with %d", status)
	}
	if status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/funding/recharge", `{"bic":"BIC001","instruction_id":"ins-fund","amount":"100.00"}`); status != fiber.StatusOK {
		t.Fatalf("recharge failed with %d", status)
	}
	if status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/ledger/reserve", `{"bic":"BIC001","instruction_id":"ins-hold","amount":"30.00"}`); status != fiber.StatusOK {
		t.Fatalf("reserve failed with %d", status)
	}

	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/ledger/settlements",
		`{"cycle_id":1,"positions":[{"bic":"BIC001","total_debits":"30.00","total_credits":"0.00","net_position":"-10.00"}]}`)
	if status != fiber.StatusOK {
		t.Fatalf("settlement: expected 200, got %d (%v)", status, body)
	}

	positions, ok := body["positions"].([]any)
	if !ok || len(positions) != 1 {
		t.Fatalf("expected one position result, got %v", body["positions"])
	}
	pos := positions[0].(map[string]any)
	if pos["status"] != "applied" {
		t.Fatalf("expected applied position, got %v", pos)
	}
	acc := pos["account"].(map[string]any)
	if acc["available_balance"] != "90.00" || acc["blocked_funds"] != "0.00" {
		t.Fatalf("expected 90.00/0.00 after settlement, got %v/%v", acc["available_balance"], acc["blocked_funds"])
	}
}

func TestUnknownAccountIsNotFound(t *testing.T) {
	app := setupTestApp(t)

	status, _ := doJSON(t, app, fiber.MethodGet, "/api/v1/ledger/accounts/NOPE", "")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/survey"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/user"
)

func createQuestion(t *testing.T, cat survey.Category, text, targetRole string) survey.Question {
	t.Helper()
	now := time.Now().UTC()
	q, err := surveyRepo.CreateQuestion(context.Background(), survey.Question{
		CategoryID: cat.ID,
		Text:       text,
		TargetRole: targetRole,
		Answers: []survey.AnswerOption{
			{Text: "Sim", Score: 10},
			{Text: "Não", Score: 0},
		},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateQuestion(): %v", err)
	}
	return q
}

func Test_surveyApi_categories(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin@test.br", user.RoleAdmin, "", true)
	company := createUser(t, "Auto Center Silva", "silva@test.br", user.RoleCompany, "Auto Center Silva", true)

	adminToken := getToken(t, admin)
	companyToken := getToken(t, company)

	// any authed account can list
	existing := createCategory(t, "Gestão")
	req, rec := newAuthRequest(http.MethodGet, "/v1/categories", companyToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, existing)}, rec)

	// writes are admin-only
	body := marchallObj(t, survey.NewCategory{Name: "Vendas"})
	req, rec = newAuthRequest(http.MethodPost, "/v1/categories", companyToken, body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}, rec)

	req, rec = newAuthRequest(http.MethodPost, "/v1/categories", adminToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusCreated)
	}
	var created survey.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if created.Name != "Vendas" {
		t.Errorf("failed! Name = %q; want %q", created.Name, "Vendas")
	}

	// rename
	body = marchallObj(t, survey.NewCategory{Name: "Pós-venda"})
	req, rec = newAuthRequest(http.MethodPut, "/v1/categories/"+created.ID, adminToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
	}

	// delete guard: category with questions cannot go
	createQuestion(t, existing, "Possui controle de estoque?", survey.TargetCompany)
	req, rec = newAuthRequest(http.MethodDelete, "/v1/categories/"+existing.ID, adminToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "category still has questions"})}, rec)

	// empty category deletes fine
	req, rec = newAuthRequest(http.MethodDelete, "/v1/categories/"+created.ID, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
	}

	// unknown ID
	req, rec = newAuthRequest(http.MethodDelete, "/v1/categories/lol", adminToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}, rec)
}

func Test_surveyApi_questions(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin@test.br", user.RoleAdmin, "", true)
	company := createUser(t, "Auto Center Silva", "silva@test.br", user.RoleCompany, "Auto Center Silva", true)
	adminToken := getToken(t, admin)

	cat := createCategory(t, "Gestão")
	q1 := createQuestion(t, cat, "Possui controle de estoque?", survey.TargetCompany)
	q2 := createQuestion(t, cat, "Recebe treinamento regular?", survey.TargetEmployee)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/questions", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "all", path: "/v1/questions", token: adminToken, wantData: marchallList(t, q1, q2)},
		{name: "by target role", path: "/v1/questions?target_role=employee", token: adminToken, wantData: marchallList(t, q2)},
		{name: "by category", path: "/v1/questions?category_id=" + cat.ID, token: adminToken, wantData: marchallList(t, q1, q2)},
		{name: "readable by any account", path: "/v1/questions", token: getToken(t, company), wantData: marchallList(t, q1, q2)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// create with unknown category fails validation
	body := marchallObj(t, survey.NewQuestion{
		CategoryID: "lol",
		Text:       "Por quê?",
		TargetRole: survey.TargetCompany,
		Answers:    []survey.NewAnswerOption{{Text: "Sim", Score: 10}},
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/questions", adminToken, body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"category_id": "category not found"})}, rec)

	// replace answers wholesale on update
	body = marchallObj(t, survey.UpdateQuestion{
		Text:       "Possui controle de estoque informatizado?",
		TargetRole: survey.TargetCompany,
		Answers: []survey.NewAnswerOption{
			{Text: "Sim", Score: 10},
			{Text: "Parcialmente", Score: 5},
			{Text: "Não", Score: 0},
		},
	})
	req, rec = newAuthRequest(http.MethodPut, "/v1/questions/"+q1.ID, adminToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var updated survey.Question
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(updated.Answers) != 3 {
		t.Errorf("failed! len(Answers) = %d; want 3", len(updated.Answers))
	}

	// delete: unknown ID is not silently ignored
	req, rec = newAuthRequest(http.MethodDelete, "/v1/questions/lol", adminToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}, rec)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/questions/"+q2.ID, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
	}
}

package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/T3Sistema/SCORE-INTELIGENTE-2.0/apps/api/echo"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/audit"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/user"
	emailsvc "github.com/T3Sistema/SCORE-INTELIGENTE-2.0/services/email"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	company := createUser(t, "Auto Center Silva", "silva@test.br", user.RoleCompany, "Auto Center Silva", true)
	pending := createPendingUser(t, "Oficina Norte", "norte@test.br", user.RoleCompany, "Oficina Norte")
	inactive := createUser(t, "Oficina Sul", "sul@test.br", user.RoleCompany, "Oficina Sul", false)

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echoapi.LoginRequest{Email: "this field is required", Password: "this field is required"}),
		},
		{
			name: "unknown email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Email: "lol@test.br", Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Email: company.Email, Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "pending account", wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.LoginRequest{Email: pending.Email, Password: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "account pending approval"}),
		},
		{
			name: "deactivated account", wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.LoginRequest{Email: inactive.Email, Password: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "success", wantCode: http.StatusOK,
			body: marchallObj(t, echoapi.LoginRequest{Email: company.Email, Password: "LolC@t123"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal(): %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}

				// a successful login lands in the activity log
				entries, err := auditRepo.QueryLogEntries(context.Background(), audit.Filter{Type: audit.TypeUserLogin}, nil)
				if err != nil {
					t.Fatalf("QueryLogEntries(): %v", err)
				}
				if len(entries) != 1 {
					t.Fatalf("failed! len(entries) = %d; want 1", len(entries))
				}
				if entries[0].ActorID != company.ID {
					t.Errorf("failed! ActorID = %s; want %s", entries[0].ActorID, company.ID)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_registerCompany(t *testing.T) {
	app := setup(t)

	existing := createUser(t, "Auto Center Silva", "silva@test.br", user.RoleCompany, "Auto Center Silva", true)

	newCompany := func(name, email string) []byte {
		return marchallObj(t, user.NewCompany{
			Name:            name,
			CompanyName:     name,
			Email:           email,
			Phone:           "+55 11 99999-0000",
			Password:        "LolC@t123",
			PasswordConfirm: "LolC@t123",
		})
	}

	tests := []httpTest{
		{
			name: "email taken", wantCode: http.StatusBadRequest,
			body:     newCompany("Oficina Norte", existing.Email),
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
		{name: "success", wantCode: http.StatusCreated, body: newCompany("Oficina Norte", "norte@test.br")},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/register-company"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusCreated {
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if usr.Status != user.StatusPending {
					t.Errorf("failed! status = %q; want %q", usr.Status, user.StatusPending)
				}
				if usr.CompanyCode == "" {
					t.Error("failed! empty company code")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_registerEmployee(t *testing.T) {
	app := setup(t)

	company := createUser(t, "Auto Center Silva", "silva@test.br", user.RoleCompany, "Auto Center Silva", true)

	newEmployee := func(email, code string) []byte {
		return marchallObj(t, user.NewEmployee{
			Name:            "Pedro Souza",
			Email:           email,
			Password:        "LolC@t123",
			PasswordConfirm: "LolC@t123",
			CompanyCode:     code,
		})
	}

	tests := []httpTest{
		{
			name: "malformed company code", wantCode: http.StatusBadRequest,
			body:     newEmployee("pedro@test.br", "lol!"),
			wantData: marchallObj(t, map[string]string{"company_code": "invalid company code"}),
		},
		{
			name: "unknown company code", wantCode: http.StatusBadRequest,
			body:     newEmployee("pedro@test.br", "SITGHOST0000"),
			wantData: marchallObj(t, map[string]string{"company_code": user.ErrCompanyUnknown.Error()}),
		},
		{name: "success", wantCode: http.StatusCreated, body: newEmployee("pedro@test.br", company.CompanyCode)},
		{
			// codes are shared by hand; case must not matter
			name: "lowercased code", wantCode: http.StatusCreated,
			body: newEmployee("ana@test.br", strings.ToLower(company.CompanyCode)),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/register-employee"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusCreated {
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if usr.Role != user.RoleEmployee {
					t.Errorf("failed! role = %q; want %q", usr.Role, user.RoleEmployee)
				}
				if usr.CompanyName != company.CompanyName {
					t.Errorf("failed! company = %q; want %q", usr.CompanyName, company.CompanyName)
				}
				if usr.Status != user.StatusPending {
					t.Errorf("failed! status = %q; want %q", usr.Status, user.StatusPending)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userQuery(t *testing.T) {
	app := setup(t)

	path := func(search string, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}

	admin := createUser(t, "Admin", "admin@test.br", user.RoleAdmin, "", true)
	silva := createUser(t, "Auto Center Silva", "silva@test.br", user.RoleCompany, "Auto Center Silva", true)
	norte := createUser(t, "Oficina Norte", "norte@test.br", user.RoleCompany, "Oficina Norte", true)
	joao := createUser(t, "João", "joao@test.br", user.RoleEmployee, "Auto Center Silva", true)
	maria := createUser(t, "Maria", "maria@test.br", user.RoleEmployee, "Oficina Norte", true)
	manager := createUser(t, "Grupo Leste", "leste@test.br", user.RoleGroup, "", true)
	manager.ManagedCompanies = []string{"Oficina Norte"}
	if _, err := usrRepo.UpdateUser(context.Background(), manager); err != nil {
		t.Fatalf("UpdateUser(): %v", err)
	}

	adminToken := getToken(t, admin)
	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Employees not allowed", path: "/v1/users", token: getToken(t, joao), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Admin gets all", path: "/v1/users", token: adminToken,
			wantData: marchallList(t, admin, silva, norte, joao, maria, manager),
		},
		{name: "search (unknown)", path: path("lol"), token: adminToken, wantData: empty},
		{name: "search=mar", path: path("mar"), token: adminToken, wantData: marchallList(t, maria)},
		{name: "role=company", path: path("", user.RoleCompany), token: adminToken, wantData: marchallList(t, silva, norte)},
		{
			name: "Company sees own employees", path: "/v1/users", token: getToken(t, silva),
			wantData: marchallList(t, joao),
		},
		{
			name: "Group sees managed companies", path: "/v1/users", token: getToken(t, manager),
			wantData: marchallList(t, norte, maria),
		},
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
}

func Test_userApi_approveReject(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "admin@test.br", user.RoleAdmin, "", true)
	emp := createUser(t, "João", "joao@test.br", user.RoleEmployee, "Auto Center Silva", true)
	pending1 := createPendingUser(t, "Oficina Norte", "norte@test.br", user.RoleCompany, "Oficina Norte")
	pending2 := createPendingUser(t, "Oficina Sul", "sul@test.br", user.RoleCompany, "Oficina Sul")

	adminToken := getToken(t, admin)

	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/users/" + pending1.ID + "/approve",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Admin required", path: "/v1/users/" + pending1.ID + "/approve", token: getToken(t, emp),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "Approve", path: "/v1/users/" + pending1.ID + "/approve", token: adminToken, wantCode: http.StatusOK},
		{name: "Reject", path: "/v1/users/" + pending2.ID + "/reject", token: adminToken, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				checkCodeAndData(t, tt, rec)
				return
			}

			var usr user.User
			if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
				t.Fatalf("json.Unmarshal(): %v", err)
			}
			wantStatus := user.StatusApproved
			if strings.HasSuffix(tt.path, "/reject") {
				wantStatus = user.StatusRejected
			}
			if usr.Status != wantStatus {
				t.Errorf("failed! status = %q; want %q", usr.Status, wantStatus)
			}
			if usr.ApprovedByID != admin.ID {
				t.Errorf("failed! ApprovedByID = %q; want %q", usr.ApprovedByID, admin.ID)
			}
		})
	}

	// both decisions land in the activity log
	entries, err := auditRepo.QueryLogEntries(context.Background(), audit.Filter{Type: audit.TypeUserApproval}, nil)
	if err != nil {
		t.Fatalf("QueryLogEntries(): %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("failed! len(entries) = %d; want 2", len(entries))
	}
}

func Test_userApi_userRefreshToken(t *testing.T) {
	app := setup(t)

	inactive := createUser(t, "Oficina Sul", "sul@test.br", user.RoleCompany, "Oficina Sul", false)
	company := createUser(t, "Auto Center Silva", "silva@test.br", user.RoleCompany, "Auto Center Silva", true)

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   company.ID,
			Audience:  "Score Inteligente",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		Name:         company.Name,
		Email:        company.Email,
		Role:         company.Role,
		IsCompany:    true,
		CompanyName:  company.CompanyName,
	}
	unrefreshableToken, err := echoapi.GenerateToken(unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Inactive user not allowed", token: getToken(t, inactive), wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"})},
		{name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
		{name: "Token refreshed", token: getToken(t, company), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess new token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal(): %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userResetPassword(t *testing.T) {
	app := setup(t)

	company := createUser(t, "Auto Center Silva", "silva@test.br", user.RoleCompany, "Auto Center Silva", true)
	successData := marchallObj(t, echoapi.SuccessResponse{Success: "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."})

	pathRegex, err := regexp.Compile("/password-reset/.+/.+")
	if err != nil {
		t.Fatalf("regexp.Compile(): %v", err)
	}

	type extraTest struct {
		emailSent bool
		to        mail.Address
	}
	tests := []httpTest{
		{name: "required fields", wantCode: http.StatusBadRequest, wantData: marchallObj(t, echoapi.PasswordResetRequest{Email: "this field is required"})},
		{
			name: "invalid email", wantCode: http.StatusBadRequest, body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol"}),
			wantData: marchallObj(t, echoapi.PasswordResetRequest{Email: "email must be a valid email address"}),
		},
		{
			name: "unknown email", wantCode: http.StatusOK, body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol@test.com"}),
			wantData: successData, extra: extraTest{emailSent: false},
		},
		{
			name: "known email", wantCode: http.StatusOK, body: marchallObj(t, echoapi.PasswordResetRequest{Email: company.Email}),
			wantData: successData, extra: extraTest{emailSent: true, to: mail.Address{Name: company.Name, Address: company.Email}},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.SentMessages = nil // reset

			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if extra, ok := tt.extra.(extraTest); ok {
				if extra.emailSent {
					if len(emailsvc.SentMessages) != 1 {
						t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
					}
					msg := emailsvc.SentMessages[0]
					if msg.To[0] != extra.to {
						t.Errorf("failed! To = %v; want %v", msg.To[0], extra.to)
					}
					if !strings.Contains(msg.TextContent, extra.to.Name) {
						t.Errorf("failed! text content does not contain recipient's name \"%s\"", extra.to.Name)
					}
					if !pathRegex.MatchString(msg.TextContent) {
						t.Errorf("failed! text content does not match pathRegex %v", pathRegex)
					}
				} else {
					if len(emailsvc.SentMessages) > 0 {
						t.Errorf("failed! len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
					}
				}
			}
		})
	}
}

func Test_userApi_userConfirmPasswordReset(t *testing.T) {
	app := setup(t)

	company := createUser(t, "Auto Center Silva", "silva@test.br", user.RoleCompany, "Auto Center Silva", true)
	validUID := user.EncodeUID(company)
	validToken := user.MakeToken(company)

	// generate an expired token
	dayLate := conf.PasswordResetTimeoutDelta + (24 * time.Hour)
	user.NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken := user.MakeToken(company)
	user.NowFunc = time.Now // reset

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, user.ResetUserPassword{Token: reqMsg, UID: reqMsg, Password: "password must contain at least 8 characters", PasswordConfirm: reqMsg}),
		},
		{
			name: "invalid pwd: min len", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "lol", PasswordConfirm: "lol"}),
			wantData: marchallObj(t, user.ResetUserPassword{Password: "password must contain at least 8 characters"}),
		},
		{
			name: "PasswordConfirm must = Password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "LolC@t123", PasswordConfirm: "lol"}),
			wantData: marchallObj(t, user.ResetUserPassword{PasswordConfirm: "password_confirm must be equal to Password"}),
		},
		{
			name: "invalid uid", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "bG9s", Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, user.ResetUserPassword{UID: "invalid value"}),
		},
		{
			name: "invalid token", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "HE4TS-sigsig-sig", UID: validUID, Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, user.ResetUserPassword{Token: "invalid value"}),
		},
		{
			name: "expired token", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: expiredToken, UID: validUID, Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, user.ResetUserPassword{Token: "invalid value"}),
		},
		{
			name: "valid token", wantCode: http.StatusOK,
			body:     marchallObj(t, user.ResetUserPassword{Token: validToken, UID: validUID, Password: "NewC@t456", PasswordConfirm: "NewC@t456"}),
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Password has been reset with the new password."}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset-confirm"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				refreshed, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: company.ID})
				if err != nil {
					t.Fatalf("GetUser(): %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, company.PasswordHash) {
					t.Fatal("failed to update new password")
				}
			}
		})
	}
}

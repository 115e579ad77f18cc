package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/T3Sistema/SCORE-INTELIGENTE-2.0/apps/api/echo"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/audit"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/group"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/score"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/survey"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/user"
	emailsvc "github.com/T3Sistema/SCORE-INTELIGENTE-2.0/services/email"
	logsvc "github.com/T3Sistema/SCORE-INTELIGENTE-2.0/services/logger"
	inmemdb "github.com/T3Sistema/SCORE-INTELIGENTE-2.0/storage/database/inmem"
)

var (
	conf *core.Config

	usrRepo    user.Repository
	surveyRepo survey.Repository
	scoreRepo  score.Repository
	groupRepo  group.Repository
	auditRepo  audit.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func setup(t *testing.T) Server {
	t.Helper()

	conf = core.NewConfig()
	conf.TestMode = true
	conf.Debug = false // the error handler must render JSON error shapes

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)
	logger.Enable(false)

	// set up DB & repos
	db := inmemdb.NewDB()
	usrRepo = inmemdb.NewUserRepository(db)
	surveyRepo = inmemdb.NewSurveyRepository(db)
	scoreRepo = inmemdb.NewScoreRepository(db)
	groupRepo = inmemdb.NewGroupRepository(db)
	auditRepo = inmemdb.NewAuditRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(nil, usrRepo, mailSvc, conf)
	surveySvc := survey.NewService(nil, surveyRepo)
	scoreSvc := score.NewService(nil, scoreRepo, usrRepo, surveyRepo)
	groupSvc := group.NewService(nil, groupRepo, usrRepo)
	auditSvc := audit.NewService(auditRepo, logger)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(logger, conf)
	user.LoadCommonPasswords(logger, conf)

	// set up server
	return NewServer(
		ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			SurveySvc:  surveySvc,
			ScoreSvc:   scoreSvc,
			GroupSvc:   groupSvc,
			AuditSvc:   auditSvc,
			Validate:   validate,
			Translator: translator,
		},
	)
}

func createUser(t *testing.T, name, email, role, companyName string, active bool) user.User {
	t.Helper()
	usr := user.User{
		Name:        name,
		Email:       email,
		Role:        role,
		Status:      user.StatusApproved,
		CompanyName: companyName,
	}
	if role == user.RoleCompany {
		usr.CompanyCode = user.GenerateCompanyCode(companyName, user.NowFunc())
	}
	usr.SetActive(active)
	if err := usr.SetPassword("LolC@t123"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func createPendingUser(t *testing.T, name, email, role, companyName string) user.User {
	t.Helper()
	usr := user.User{
		Name:        name,
		Email:       email,
		Role:        role,
		Status:      user.StatusPending,
		CompanyName: companyName,
	}
	usr.SetActive(true)
	if err := usr.SetPassword("LolC@t123"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	l1, ok1 := j1.([]interface{})
	l2, ok2 := j2.([]interface{})
	if ok1 && ok2 {
		return assert.ElementsMatch(t, l1, l2), nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	gofakeit "github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renohub/internal/config"
	"renohub/internal/models"
	"renohub/internal/status"
)

// End to end tests: full app wired to a live postgres, exercised over HTTP.
// Skipped unless TEST_POSTGRES_CONN points at a disposable database.
const testConnEnv = "TEST_POSTGRES_CONN"

func TestAppStartup(t *testing.T) {
	app := StartupApp(t)
	StopApp(app)
}

func TestPing(t *testing.T) {
	app := StartupApp(t)
	defer StopApp(app)

	resp, err := http.Get(fmt.Sprintf("http://%s/api/ping", app.cfg.ServerAddress))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestProjectLifecycle walks one project from creation through selection and
// completion, checking the canonical status and both contractors' derived
// views at each stage.
func TestProjectLifecycle(t *testing.T) {
	app := StartupApp(t)
	defer StopApp(app)

	customerId := SeedCustomer(t, app)
	builderId := SeedContractor(t, app)
	plumberId := SeedContractor(t, app)

	// create
	body := fmt.Sprintf(`{"customerId":"%s","title":"Kitchen remodel","description":"Full renovation"}`,
		customerId)
	var project models.Project
	ReqTest(t, app, "POST", "/api/projects/new", body, "create project", http.StatusOK, &project)
	assert.Equal(t, models.ProjectPending, project.Status)

	// unknown customer is rejected outright
	body = fmt.Sprintf(`{"customerId":"%s","title":"Ghost project"}`, uuid.NewString())
	ReqTest(t, app, "POST", "/api/projects/new", body, "unknown customer", http.StatusUnauthorized, nil)

	// approve
	ReqTest(t, app, "PUT", withStatus(project.Id, models.ProjectApproved), "", "approve", http.StatusOK, &project)
	assert.Equal(t, models.ProjectApproved, project.Status)

	// approval is not repeatable
	ReqTest(t, app, "PUT", withStatus(project.Id, models.ProjectApproved), "", "approve twice", http.StatusConflict, nil)

	assert.Equal(t, status.Approved, GetView(t, app, project.Id, builderId).Status)

	// builder applies for a site visit; the project presents as SiteVisitPending
	var visit models.SiteVisitApplication
	body = fmt.Sprintf(`{"contractorId":"%s"}`, builderId)
	ReqTest(t, app, "POST", "/api/projects/"+project.Id+"/visits/new", body, "apply for visit", http.StatusOK, &visit)
	ReqTest(t, app, "POST", "/api/projects/"+project.Id+"/visits/new", body, "apply twice", http.StatusConflict, nil)

	ReqTest(t, app, "GET", "/api/projects/"+project.Id, "", "get project", http.StatusOK, &project)
	assert.Equal(t, models.ProjectSiteVisitPending, project.Status)
	assert.Equal(t, status.SiteVisitApplied, GetView(t, app, project.Id, builderId).Status)

	ReqTest(t, app, "PUT", "/api/visits/"+visit.Id+"/complete", "", "complete visit", http.StatusOK, &visit)
	assert.Equal(t, models.VisitCompleted, visit.Status)
	assert.Equal(t, status.SiteVisitCompleted, GetView(t, app, project.Id, builderId).Status)

	// open bidding
	ReqTest(t, app, "PUT", withStatus(project.Id, models.ProjectBidding), "", "open bidding", http.StatusOK, &project)

	// the plumber never visited the site, so their bid is refused
	body = fmt.Sprintf(`{"contractorId":"%s","price":52000,"description":"pipes"}`, plumberId)
	ReqTest(t, app, "POST", "/api/projects/"+project.Id+"/bids/new", body, "bid without visit", http.StatusForbidden, nil)

	ApplyAndCompleteVisit(t, app, project.Id, plumberId)
	ReqTest(t, app, "POST", "/api/projects/"+project.Id+"/bids/new", body, "plumber bid", http.StatusOK, nil)

	var builderBid models.Bid
	body = fmt.Sprintf(`{"contractorId":"%s","price":45000,"description":"full scope"}`, builderId)
	ReqTest(t, app, "POST", "/api/projects/"+project.Id+"/bids/new", body, "builder bid", http.StatusOK, &builderBid)
	ReqTest(t, app, "POST", "/api/projects/"+project.Id+"/bids/new", body, "duplicate bid", http.StatusConflict, nil)

	view := GetView(t, app, project.Id, builderId)
	assert.Equal(t, status.Bidding, view.Status)
	assert.True(t, view.HasLiveBid)

	var bids []models.Bid
	ReqTest(t, app, "GET", "/api/projects/"+project.Id+"/bids", "", "list bids", http.StatusOK, &bids)
	assert.Len(t, bids, 2)

	// select the builder's bid
	selectURL := fmt.Sprintf("/api/projects/%s/select/%s?customer_id=%s", project.Id, builderBid.Id, customerId)
	ReqTest(t, app, "PUT", selectURL, "", "select bid", http.StatusOK, &project)
	assert.Equal(t, models.ProjectBiddingClosed, project.Status)
	require.NotNil(t, project.SelectedBidId)
	assert.Equal(t, builderBid.Id, *project.SelectedBidId)

	// selection happens exactly once
	ReqTest(t, app, "PUT", selectURL, "", "select twice", http.StatusConflict, nil)

	assert.Equal(t, status.Selected, GetView(t, app, project.Id, builderId).Status)
	assert.Equal(t, status.NotSelected, GetView(t, app, project.Id, plumberId).Status)

	// work proceeds to completion
	ReqTest(t, app, "PUT", withStatus(project.Id, models.ProjectInProgress), "", "start work", http.StatusOK, &project)
	ReqTest(t, app, "PUT", withStatus(project.Id, models.ProjectCompleted), "", "complete work", http.StatusOK, &project)
	assert.Equal(t, models.ProjectCompleted, project.Status)

	// terminal projects cannot be cancelled
	ReqTest(t, app, "PUT", withStatus(project.Id, models.ProjectCancelled), "", "cancel completed", http.StatusConflict, nil)
}

func TestCancelledProjectViews(t *testing.T) {
	app := StartupApp(t)
	defer StopApp(app)

	customerId := SeedCustomer(t, app)
	contractorId := SeedContractor(t, app)

	var project models.Project
	body := fmt.Sprintf(`{"customerId":"%s","title":"Doomed project"}`, customerId)
	ReqTest(t, app, "POST", "/api/projects/new", body, "create project", http.StatusOK, &project)
	ReqTest(t, app, "PUT", withStatus(project.Id, models.ProjectApproved), "", "approve", http.StatusOK, nil)
	ApplyAndCompleteVisit(t, app, project.Id, contractorId)

	ReqTest(t, app, "PUT", withStatus(project.Id, models.ProjectCancelled), "", "cancel", http.StatusOK, &project)
	assert.Equal(t, models.ProjectCancelled, project.Status)

	assert.Equal(t, status.Cancelled, GetView(t, app, project.Id, contractorId).Status)

	// every contractor-facing action is now refused
	body = fmt.Sprintf(`{"contractorId":"%s"}`, contractorId)
	ReqTest(t, app, "POST", "/api/projects/"+project.Id+"/visits/new", body, "visit on cancelled", http.StatusConflict, nil)
}

//// Service

func StartupApp(t *testing.T) *App {
	t.Helper()

	conn := os.Getenv(testConnEnv)
	if conn == "" {
		t.Skipf("set %s to run end to end tests against a live postgres", testConnEnv)
	}

	gofakeit.Seed(0)

	cfg, err := config.NewConfig()
	require.NoError(t, err)
	cfg.ServerAddress = "127.0.0.1:18097"
	cfg.Conn = conn
	cfg.AutoMigrateUp = "false"
	cfg.AutoMigrateDown = "false"

	app, err := NewApp(WithConfig(cfg))
	require.NoError(t, err)

	if err := app.repo.MigrateDown(); err != nil { // clear potential leftovers
		t.Log(err)
	}
	require.NoError(t, app.repo.MigrateUp())

	go app.Run()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/api/ping", cfg.ServerAddress))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond, "server did not come up")

	return app
}

func StopApp(app *App) {
	app.stopSig <- os.Interrupt
	<-app.Done
}

func SeedCustomer(t *testing.T, app *App) string {
	t.Helper()

	id := uuid.NewString()
	_, err := app.repo.TestGetDB().Exec(
		"INSERT INTO customers (id, name, email) VALUES ($1, $2, $3)",
		id, gofakeit.Name(), gofakeit.Email())
	require.NoError(t, err)
	return id
}

func SeedContractor(t *testing.T, app *App) string {
	t.Helper()

	id := uuid.NewString()
	_, err := app.repo.TestGetDB().Exec(
		"INSERT INTO contractors (id, company_name, email, phone) VALUES ($1, $2, $3, $4)",
		id, gofakeit.Company(), gofakeit.Email(), gofakeit.Phone())
	require.NoError(t, err)
	return id
}

func ApplyAndCompleteVisit(t *testing.T, app *App, projectId, contractorId string) models.SiteVisitApplication {
	t.Helper()

	var visit models.SiteVisitApplication
	body := fmt.Sprintf(`{"contractorId":"%s"}`, contractorId)
	ReqTest(t, app, "POST", "/api/projects/"+projectId+"/visits/new", body, "apply for visit", http.StatusOK, &visit)
	ReqTest(t, app, "PUT", "/api/visits/"+visit.Id+"/complete", "", "complete visit", http.StatusOK, &visit)
	return visit
}

func GetView(t *testing.T, app *App, projectId, contractorId string) status.ContractorView {
	t.Helper()

	var view status.ContractorView
	query := fmt.Sprintf("/api/projects/%s/view?contractor_id=%s", projectId, contractorId)
	ReqTest(t, app, "GET", query, "", "contractor view", http.StatusOK, &view)
	return view
}

func withStatus(projectId string, target models.ProjectStatus) string {
	return fmt.Sprintf("/api/projects/%s/status?status=%s", projectId, target)
}

// ReqTest performs one request against the running app, asserts the status
// code, and unmarshals the body into out when out is non-nil.
func ReqTest(t *testing.T, app *App, method, endpoint, body, testName string, expectedStatus int, out any) {
	t.Helper()

	var reader io.Reader
	if len(body) > 0 {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, fmt.Sprintf("http://%s%s", app.cfg.ServerAddress, endpoint), reader)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	require.Equalf(t, expectedStatus, resp.StatusCode,
		"%s %s '%s': unexpected status, body:\n%s", method, endpoint, testName, string(respBody))

	if out != nil {
		require.NoError(t, json.Unmarshal(respBody, out), "%s %s '%s': %s", method, endpoint, testName, string(respBody))
	}
}

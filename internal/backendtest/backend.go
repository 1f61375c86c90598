// Package backendtest поднимает в памяти REST бэкенд с тем же контрактом,
// что и настоящий сервер тестирования. Используется только в тестах.
package backendtest

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

const passPercentage = 60

var signingKey = []byte("backendtest-secret")

// Call описывает один принятый запрос.
type Call struct {
	Method string
	Path   string
}

func (c Call) String() string {
	return c.Method + " " + c.Path
}

type failure struct {
	method string
	prefix string
	status int
	detail string
}

type account struct {
	user     models.User
	password string
}

// Backend реализует фейковый бэкенд. Все методы безопасны для конкурентного вызова.
type Backend struct {
	Server *httptest.Server

	mu        sync.Mutex
	accounts  map[string]*account
	tests     map[int]*models.Test
	questions map[int]*models.Question
	results   map[int]*models.TestResult
	calls     []Call
	failures  []failure
	revoked   map[string]struct{}
	tokenTTL  time.Duration
	nextID    int
}

// New запускает бэкенд. Сервер закрывается через t.Cleanup вызывающей стороной.
func New() *Backend {
	b := &Backend{
		accounts:  make(map[string]*account),
		tests:     make(map[int]*models.Test),
		questions: make(map[int]*models.Question),
		results:   make(map[int]*models.TestResult),
		revoked:   make(map[string]struct{}),
		tokenTTL:  time.Hour,
	}
	b.Server = httptest.NewServer(b.routes())
	return b
}

// URL возвращает базовый адрес API.
func (b *Backend) URL() string {
	return b.Server.URL + "/api"
}

// Close останавливает сервер.
func (b *Backend) Close() {
	b.Server.Close()
}

// Calls возвращает копию журнала запросов.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// ResetCalls очищает журнал запросов.
func (b *Backend) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

// FailOn заставляет запросы method с путем, начинающимся на prefix, отвечать status.
func (b *Backend) FailOn(method, prefix string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, failure{method: method, prefix: prefix, status: status, detail: detail})
}

// ClearFailures убирает все заданные через FailOn ошибки.
func (b *Backend) ClearFailures() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = nil
}

// Revoke делает токен недействительным: дальнейшие запросы с ним получают 401.
func (b *Backend) Revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[token] = struct{}{}
}

// SetTokenTTL задает время жизни новых токенов.
func (b *Backend) SetTokenTTL(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokenTTL = d
}

// AddUser создает пользователя напрямую и возвращает его.
func (b *Backend) AddUser(email, password, fullName string, role models.Role) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(email, password, fullName, role)
}

// Token выдает токен пользователю email.
func (b *Backend) Token(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc := b.accounts[email]
	if acc == nil {
		return ""
	}
	return b.signLocked(acc.user)
}

// AddTest создает тест с вопросами от имени creatorID и возвращает его.
func (b *Backend) AddTest(creatorID int, test models.Test) models.Test {
	b.mu.Lock()
	defer b.mu.Unlock()

	test.ID = b.id()
	test.CreatorID = creatorID
	test.CreatedAt = time.Now().UTC()
	test.UpdatedAt = test.CreatedAt
	questions := test.Questions
	test.Questions = nil
	stored := test
	b.tests[test.ID] = &stored

	for i, q := range questions {
		q.ID = b.id()
		q.TestID = test.ID
		if q.OrderNumber == 0 {
			q.OrderNumber = i + 1
		}
		stored := q
		b.questions[q.ID] = &stored
	}

	return *b.testWithQuestionsLocked(test.ID, true)
}

// AddResult сохраняет готовый результат и возвращает его идентификатор.
func (b *Backend) AddResult(result models.TestResult) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	result.ID = b.id()
	if result.CompletedAt.IsZero() {
		result.CompletedAt = time.Now().UTC()
	}
	b.results[result.ID] = &result
	return result.ID
}

// Test возвращает тест с вопросами, упорядоченными по order_number.
func (b *Backend) Test(id int) (models.Test, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.testWithQuestionsLocked(id, true)
	if t == nil {
		return models.Test{}, false
	}
	return *t, true
}

// Results возвращает все результаты теста.
func (b *Backend) Results(testID int) []models.TestResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.TestResult
	for _, r := range b.results {
		if r.TestID == testID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *Backend) id() int {
	b.nextID++
	return b.nextID
}

func (b *Backend) addUserLocked(email, password, fullName string, role models.Role) models.User {
	user := models.User{ID: b.id(), Email: email, FullName: fullName, Role: role}
	b.accounts[email] = &account{user: user, password: password}
	return user
}

func (b *Backend) signLocked(user models.User) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.Email,
		"jti": strconv.Itoa(b.id()),
		"iat": now.Unix(),
		"exp": now.Add(b.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return token
}

func (b *Backend) testWithQuestionsLocked(id int, withCorrect bool) *models.Test {
	t, ok := b.tests[id]
	if !ok {
		return nil
	}
	out := *t
	out.Questions = []models.Question{}
	for _, q := range b.questions {
		if q.TestID == id {
			qq := *q
			if !withCorrect {
				qq.CorrectAnswers = nil
			}
			out.Questions = append(out.Questions, qq)
		}
	}
	sort.Slice(out.Questions, func(i, j int) bool {
		return out.Questions[i].OrderNumber < out.Questions[j].OrderNumber
	})
	out.QuestionCount = len(out.Questions)
	return &out
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, user *models.User)

func (b *Backend) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", b.public(b.login))
	mux.HandleFunc("POST /api/auth/register", b.public(b.register))
	mux.HandleFunc("GET /api/users/me", b.private(func(w http.ResponseWriter, _ *http.Request, u *models.User) {
		writeJSON(w, http.StatusOK, u)
	}))

	mux.HandleFunc("GET /api/tests", b.private(b.listTests))
	mux.HandleFunc("GET /api/tests/my", b.private(b.teacher(b.myTests)))
	mux.HandleFunc("GET /api/tests/{id}", b.private(b.getTest))
	mux.HandleFunc("POST /api/tests", b.private(b.teacher(b.createTest)))
	mux.HandleFunc("PUT /api/tests/{id}", b.private(b.teacher(b.updateTest)))
	mux.HandleFunc("DELETE /api/tests/{id}", b.private(b.teacher(b.deleteTest)))

	mux.HandleFunc("POST /api/questions", b.private(b.teacher(b.createQuestion)))
	mux.HandleFunc("PUT /api/questions/{id}", b.private(b.teacher(b.updateQuestion)))
	mux.HandleFunc("DELETE /api/questions/{id}", b.private(b.teacher(b.deleteQuestion)))

	mux.HandleFunc("POST /api/results/submit", b.private(b.submit))
	mux.HandleFunc("GET /api/results/my", b.private(b.myResults))
	mux.HandleFunc("GET /api/results/test/{id}", b.private(b.teacher(b.testResults)))
	mux.HandleFunc("GET /api/results/statistics/{id}", b.private(b.teacher(b.statistics)))
	mux.HandleFunc("GET /api/results/{id}", b.private(b.resultDetail))

	return mux
}

// intercept журналирует запрос и применяет заданные ошибки.
func (b *Backend) intercept(w http.ResponseWriter, r *http.Request) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api")
	b.calls = append(b.calls, Call{Method: r.Method, Path: path})

	for _, f := range b.failures {
		if f.method == r.Method && strings.HasPrefix(path, f.prefix) {
			writeDetail(w, f.status, f.detail)
			return true
		}
	}
	return false
}

func (b *Backend) public(next func(w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if b.intercept(w, r) {
			return
		}
		next(w, r)
	}
}

func (b *Backend) private(next handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if b.intercept(w, r) {
			return
		}
		user, ok := b.authenticate(r)
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next(w, r, user)
	}
}

func (b *Backend) teacher(next handlerFunc) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request, user *models.User) {
		if user.Role != models.RoleTeacher {
			writeDetail(w, http.StatusForbidden, "Only teachers can perform this action")
			return
		}
		next(w, r, user)
	}
}

func (b *Backend) authenticate(r *http.Request) (*models.User, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return signingKey, nil
	})
	if err != nil {
		return nil, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.revoked[raw]; ok {
		return nil, false
	}
	email, _ := claims["sub"].(string)
	acc := b.accounts[email]
	if acc == nil {
		return nil, false
	}
	user := acc.user
	return &user, true
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	acc := b.accounts[req.Email]
	if acc == nil || acc.password != req.Password {
		writeDetail(w, http.StatusUnauthorized, "Неверный email или пароль")
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResponse{
		AccessToken: b.signLocked(acc.user),
		TokenType:   "bearer",
		User:        acc.user,
	})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string      `json:"email"`
		Password string      `json:"password"`
		FullName string      `json:"full_name"`
		Role     models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !req.Role.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"detail": []map[string]string{{"msg": "Input should be 'student' or 'teacher'"}},
		})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.accounts[req.Email]; ok {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	user := b.addUserLocked(req.Email, req.Password, req.FullName, req.Role)
	writeJSON(w, http.StatusCreated, user)
}

func (b *Backend) listTests(w http.ResponseWriter, r *http.Request, _ *models.User) {
	activeOnly := r.URL.Query().Get("active_only") != "false"

	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Test{}
	for id, t := range b.tests {
		if activeOnly && !t.IsActive {
			continue
		}
		full := b.testWithQuestionsLocked(id, false)
		full.Questions = nil
		out = append(out, *full)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) myTests(w http.ResponseWriter, _ *http.Request, user *models.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Test{}
	for id, t := range b.tests {
		if t.CreatorID == user.ID {
			out = append(out, *b.testWithQuestionsLocked(id, true))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getTest(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	t, exists := b.tests[id]
	if !exists {
		writeDetail(w, http.StatusNotFound, "Test not found")
		return
	}
	owner := user.Role == models.RoleTeacher && t.CreatorID == user.ID
	writeJSON(w, http.StatusOK, b.testWithQuestionsLocked(id, owner))
}

func (b *Backend) createTest(w http.ResponseWriter, r *http.Request, user *models.User) {
	var in models.TestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now().UTC()
	t := &models.Test{
		ID:              b.id(),
		Title:           in.Title,
		Description:     in.Description,
		DurationMinutes: in.DurationMinutes,
		IsActive:        in.IsActive,
		CreatorID:       user.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	b.tests[t.ID] = t
	writeJSON(w, http.StatusCreated, b.testWithQuestionsLocked(t.ID, true))
}

func (b *Backend) ownedTestLocked(w http.ResponseWriter, id int, user *models.User) (*models.Test, bool) {
	t, ok := b.tests[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Test not found")
		return nil, false
	}
	if t.CreatorID != user.ID {
		writeDetail(w, http.StatusForbidden, "Not authorized")
		return nil, false
	}
	return t, true
}

func (b *Backend) updateTest(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.TestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.ownedTestLocked(w, id, user)
	if !ok {
		return
	}
	t.Title = in.Title
	t.Description = in.Description
	t.DurationMinutes = in.DurationMinutes
	t.IsActive = in.IsActive
	t.UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, b.testWithQuestionsLocked(id, true))
}

func (b *Backend) deleteTest(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.ownedTestLocked(w, id, user); !ok {
		return
	}
	delete(b.tests, id)
	for qid, q := range b.questions {
		if q.TestID == id {
			delete(b.questions, qid)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) createQuestion(w http.ResponseWriter, r *http.Request, user *models.User) {
	var in models.QuestionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.ownedTestLocked(w, in.TestID, user); !ok {
		return
	}
	if detail := checkQuestion(in); detail != "" {
		writeDetail(w, http.StatusBadRequest, detail)
		return
	}
	q := &models.Question{
		ID:             b.id(),
		TestID:         in.TestID,
		QuestionText:   in.QuestionText,
		QuestionType:   in.QuestionType,
		Options:        nonNil(in.Options),
		CorrectAnswers: nonNil(in.CorrectAnswers),
		Points:         in.Points,
		OrderNumber:    in.OrderNumber,
	}
	b.questions[q.ID] = q
	writeJSON(w, http.StatusCreated, q)
}

func (b *Backend) updateQuestion(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.QuestionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	q, exists := b.questions[id]
	if !exists {
		writeDetail(w, http.StatusNotFound, "Question not found")
		return
	}
	if _, ok := b.ownedTestLocked(w, q.TestID, user); !ok {
		return
	}
	if detail := checkQuestion(in); detail != "" {
		writeDetail(w, http.StatusBadRequest, detail)
		return
	}
	q.QuestionText = in.QuestionText
	q.QuestionType = in.QuestionType
	q.Options = nonNil(in.Options)
	q.CorrectAnswers = nonNil(in.CorrectAnswers)
	q.Points = in.Points
	q.OrderNumber = in.OrderNumber
	writeJSON(w, http.StatusOK, q)
}

func (b *Backend) deleteQuestion(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	q, exists := b.questions[id]
	if !exists {
		writeDetail(w, http.StatusNotFound, "Question not found")
		return
	}
	if _, ok := b.ownedTestLocked(w, q.TestID, user); !ok {
		return
	}
	delete(b.questions, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) submit(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.testWithQuestionsLocked(req.TestID, true)
	if t == nil {
		writeDetail(w, http.StatusNotFound, "Test not found")
		return
	}
	if !t.IsActive {
		writeDetail(w, http.StatusBadRequest, "Test is not active")
		return
	}

	var score, maxScore float64
	for _, q := range t.Questions {
		if q.QuestionType == models.QuestionText {
			continue
		}
		maxScore += float64(q.Points)
		if sameSet(req.Answers[q.ID], q.CorrectAnswers) {
			score += float64(q.Points)
		}
	}
	percentage := 0.0
	if maxScore > 0 {
		percentage = math.Round(score/maxScore*10000) / 100
	}

	result := &models.TestResult{
		ID:               b.id(),
		TestID:           t.ID,
		UserID:           user.ID,
		Score:            score,
		MaxScore:         maxScore,
		Percentage:       percentage,
		Passed:           percentage >= passPercentage,
		Answers:          req.Answers,
		TimeSpentMinutes: req.TimeSpentMinutes,
		CompletedAt:      time.Now().UTC(),
		TestTitle:        t.Title,
		UserName:         user.FullName,
	}
	b.results[result.ID] = result
	writeJSON(w, http.StatusOK, result)
}

func (b *Backend) myResults(w http.ResponseWriter, _ *http.Request, user *models.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.TestResult{}
	for _, res := range b.results {
		if res.UserID == user.ID {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) testResults(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.ownedTestLocked(w, id, user); !ok {
		return
	}
	out := []models.TestResult{}
	for _, res := range b.results {
		if res.TestID == id {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) statistics(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.ownedTestLocked(w, id, user); !ok {
		return
	}
	stats := models.Statistics{}
	var sum float64
	passed := 0
	for _, res := range b.results {
		if res.TestID != id {
			continue
		}
		if stats.TotalAttempts == 0 || res.Percentage < stats.MinScore {
			stats.MinScore = res.Percentage
		}
		if res.Percentage > stats.MaxScore {
			stats.MaxScore = res.Percentage
		}
		stats.TotalAttempts++
		sum += res.Percentage
		if res.Passed {
			passed++
		}
	}
	if stats.TotalAttempts > 0 {
		stats.AverageScore = sum / float64(stats.TotalAttempts)
		stats.PassRate = float64(passed) / float64(stats.TotalAttempts) * 100
	}
	writeJSON(w, http.StatusOK, stats)
}

func (b *Backend) resultDetail(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	res, exists := b.results[id]
	if !exists {
		writeDetail(w, http.StatusNotFound, "Result not found")
		return
	}
	if res.UserID != user.ID {
		writeDetail(w, http.StatusForbidden, "Not authorized")
		return
	}

	detail := models.TestResultDetail{TestResult: *res, Questions: []models.QuestionResultDetail{}}
	if t := b.testWithQuestionsLocked(res.TestID, true); t != nil {
		for _, q := range t.Questions {
			selected := nonNil(res.Answers[q.ID])
			item := models.QuestionResultDetail{
				QuestionID:      q.ID,
				QuestionText:    q.QuestionText,
				QuestionType:    q.QuestionType,
				Options:         q.Options,
				CorrectAnswers:  q.CorrectAnswers,
				SelectedAnswers: selected,
				Points:          q.Points,
			}
			if q.QuestionType != models.QuestionText {
				correct := sameSet(selected, q.CorrectAnswers)
				item.IsCorrect = &correct
				if correct {
					item.EarnedPoints = q.Points
				}
			}
			detail.Questions = append(detail.Questions, item)
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

func checkQuestion(in models.QuestionInput) string {
	if in.QuestionType == models.QuestionText {
		return ""
	}
	if len(in.Options) < 2 {
		return "Необходимо указать минимум два варианта ответа"
	}
	if len(in.CorrectAnswers) == 0 {
		return "Укажите хотя бы один правильный ответ"
	}
	for _, c := range in.CorrectAnswers {
		found := false
		for _, o := range in.Options {
			if o == c {
				found = true
				break
			}
		}
		if !found {
			return "Правильные ответы должны присутствовать в списке вариантов"
		}
	}
	return ""
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		if seen[s] == 0 {
			return false
		}
		seen[s]--
	}
	return true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid id %q", r.PathValue("id")))
		return 0, false
	}
	return id, true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	server := httptest.NewServer(NewRouter(database, testJWTSecret))
	t.Cleanup(server.Close)
	return server, database
}

func createUser(t *testing.T, database *sql.DB, username, role string) {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if _, err := store.CreateUser(context.Background(), database, username, "", "", string(hash), role); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
}

func login(t *testing.T, server *httptest.Server, username string) AuthResponse {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var ar AuthResponse
	json.NewDecoder(resp.Body).Decode(&ar)
	if ar.Token == "" {
		t.Fatal("empty token from login")
	}
	return ar
}

func do(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodePosts(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()
	var posts []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		t.Fatalf("decoding posts: %v", err)
	}
	return posts
}

func TestLoginEndpoint(t *testing.T) {
	server, database := setupTestServer(t)
	createUser(t, database, "admin", model.RoleAdmin)

	resp := do(t, "POST", server.URL+"/api/auth/login", "", map[string]string{"username": "admin", "password": "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}

	ar := login(t, server, "admin")
	if ar.Username != "admin" || ar.Role != model.RoleAdmin || ar.ID == 0 {
		t.Errorf("unexpected auth response %+v", ar)
	}
}

func TestRegister(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := do(t, "POST", server.URL+"/api/auth/register", "", map[string]string{
		"username": "alice", "password": "longenough", "email": "a@example.com",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var ar AuthResponse
	json.NewDecoder(resp.Body).Decode(&ar)
	if ar.Token == "" || ar.Role != model.RoleUser {
		t.Errorf("expected user token, got %+v", ar)
	}

	resp = do(t, "POST", server.URL+"/api/auth/register", "", map[string]string{
		"username": "alice", "password": "longenough",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate username, got %d", resp.StatusCode)
	}

	resp = do(t, "POST", server.URL+"/api/auth/register", "", map[string]string{
		"username": "bob", "password": "short",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %d", resp.StatusCode)
	}
}

func TestMeAndChangePassword(t *testing.T) {
	server, database := setupTestServer(t)
	createUser(t, database, "alice", model.RoleUser)
	token := login(t, server, "alice").Token

	resp := do(t, "GET", server.URL+"/api/users/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var me model.User
	json.NewDecoder(resp.Body).Decode(&me)
	if me.Username != "alice" {
		t.Errorf("expected alice, got %q", me.Username)
	}

	resp = do(t, "PUT", server.URL+"/api/users/me/password", token, map[string]string{
		"oldPassword": "nope", "newPassword": "brandnew1",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong current password, got %d", resp.StatusCode)
	}

	resp = do(t, "PUT", server.URL+"/api/users/me/password", token, map[string]string{
		"oldPassword": "password", "newPassword": "brandnew1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	server, database := setupTestServer(t)
	createUser(t, database, "alice", model.RoleUser)
	token := login(t, server, "alice").Token

	resp := do(t, "POST", server.URL+"/api/auth/logout", token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = do(t, "GET", server.URL+"/api/posts", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestAdminUserManagement(t *testing.T) {
	server, database := setupTestServer(t)
	createUser(t, database, "alice", model.RoleUser)
	createUser(t, database, "root", model.RoleAdmin)
	alice := login(t, server, "alice")
	root := login(t, server, "root")

	resp := do(t, "GET", server.URL+"/api/users", alice.Token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin list, got %d", resp.StatusCode)
	}

	resp = do(t, "GET", server.URL+"/api/users", root.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var users []model.User
	json.NewDecoder(resp.Body).Decode(&users)
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	resp = do(t, "DELETE", fmt.Sprintf("%s/api/users/%d", server.URL, root.ID), root.Token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for self-delete, got %d", resp.StatusCode)
	}
	resp = do(t, "DELETE", server.URL+"/api/users/999", root.Token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown user, got %d", resp.StatusCode)
	}
	resp = do(t, "DELETE", fmt.Sprintf("%s/api/users/%d", server.URL, alice.ID), alice.Token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin delete, got %d", resp.StatusCode)
	}

	resp = do(t, "DELETE", fmt.Sprintf("%s/api/users/%d", server.URL, alice.ID), root.Token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = do(t, "GET", server.URL+"/api/users", root.Token, nil)
	users = nil
	json.NewDecoder(resp.Body).Decode(&users)
	if len(users) != 1 || users[0].Username != "root" {
		t.Errorf("expected only root left, got %+v", users)
	}

	body, _ := json.Marshal(map[string]string{"username": "alice", "password": "password"})
	lr, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	lr.Body.Close()
	if lr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected deleted user login to fail, got %d", lr.StatusCode)
	}
}

func TestPostsAPIFlow(t *testing.T) {
	server, database := setupTestServer(t)
	createUser(t, database, "alice", model.RoleUser)
	createUser(t, database, "bob", model.RoleUser)
	alice := login(t, server, "alice").Token
	bob := login(t, server, "bob").Token

	resp := do(t, "POST", server.URL+"/api/posts", alice, map[string]any{
		"title": "Blue Wallet", "description": "leather", "isLost": true, "contact": "555-0100",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created map[string]any
	json.NewDecoder(resp.Body).Decode(&created)
	id := int64(created["id"].(float64))
	if created["isLost"] != true || created["status"] != model.PostStatusActive {
		t.Errorf("unexpected created post %v", created)
	}
	if _, ok := created["createdAt"].(string); !ok {
		t.Error("expected createdAt string")
	}

	do(t, "POST", server.URL+"/api/posts", bob, map[string]any{"title": "Black Umbrella", "isLost": false})

	posts := decodePosts(t, do(t, "GET", server.URL+"/api/posts", alice, nil))
	if len(posts) != 2 {
		t.Errorf("expected 2 posts, got %d", len(posts))
	}

	posts = decodePosts(t, do(t, "GET", server.URL+"/api/posts/search?q=wallet&isLost=true", bob, nil))
	if len(posts) != 1 || posts[0]["title"] != "Blue Wallet" {
		t.Errorf("expected wallet search hit, got %v", posts)
	}
	posts = decodePosts(t, do(t, "GET", server.URL+"/api/posts/search?q=wallet&isLost=false", bob, nil))
	if len(posts) != 0 {
		t.Errorf("expected no found wallets, got %v", posts)
	}

	posts = decodePosts(t, do(t, "GET", server.URL+"/api/posts/user/me", bob, nil))
	if len(posts) != 1 || posts[0]["title"] != "Black Umbrella" {
		t.Errorf("expected bob's post only, got %v", posts)
	}

	postURL := server.URL + "/api/posts/" + jsonID(id)
	resp = do(t, "PUT", postURL, bob, map[string]any{"title": "Mine now"})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 editing someone else's post, got %d", resp.StatusCode)
	}

	resp = do(t, "PUT", postURL, alice, map[string]any{"title": "Blue Wallet (found?)", "contact": "desk"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var updated map[string]any
	json.NewDecoder(resp.Body).Decode(&updated)
	if updated["isLost"] != true {
		t.Error("omitted isLost should keep the existing value")
	}

	resp = do(t, "DELETE", postURL, bob, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 deleting someone else's post, got %d", resp.StatusCode)
	}
	resp = do(t, "DELETE", postURL, alice, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	resp = do(t, "GET", postURL, alice, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestAdminModeratesPosts(t *testing.T) {
	server, database := setupTestServer(t)
	createUser(t, database, "admin", model.RoleAdmin)
	createUser(t, database, "alice", model.RoleUser)
	admin := login(t, server, "admin").Token
	alice := login(t, server, "alice").Token

	resp := do(t, "POST", server.URL+"/api/posts", alice, map[string]any{"title": "Spam", "isLost": true})
	var created map[string]any
	json.NewDecoder(resp.Body).Decode(&created)
	statusURL := server.URL + "/api/posts/" + jsonID(int64(created["id"].(float64))) + "/status"

	resp = do(t, "PUT", statusURL, alice, map[string]string{"status": model.PostStatusReported})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin status change, got %d", resp.StatusCode)
	}

	resp = do(t, "PUT", statusURL, admin, map[string]string{"status": "bogus"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid status, got %d", resp.StatusCode)
	}

	resp = do(t, "PUT", statusURL, admin, map[string]string{"status": model.PostStatusReported})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	posts := decodePosts(t, do(t, "GET", server.URL+"/api/posts?status=reported", admin, nil))
	if len(posts) != 1 {
		t.Errorf("expected 1 reported post, got %d", len(posts))
	}
}

func TestCreatePostMultipartWithImage(t *testing.T) {
	server, database := setupTestServer(t)
	createUser(t, database, "alice", model.RoleUser)
	token := login(t, server, "alice").Token

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})
	var pngData bytes.Buffer
	png.Encode(&pngData, img)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("title", "Red Keychain")
	mw.WriteField("isLost", "false")
	part, _ := mw.CreateFormFile("image", "keys.png")
	part.Write(pngData.Bytes())
	mw.Close()

	req, _ := http.NewRequest("POST", server.URL+"/api/posts", &body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var created map[string]any
	json.NewDecoder(resp.Body).Decode(&created)
	if created["isLost"] != false {
		t.Error("expected found post")
	}
	imagePath, _ := created["imagePath"].(string)
	if imagePath == "" {
		t.Fatal("expected imagePath")
	}

	imgResp, err := http.Get(server.URL + imagePath)
	if err != nil {
		t.Fatal(err)
	}
	defer imgResp.Body.Close()
	if imgResp.StatusCode != http.StatusOK || imgResp.Header.Get("Content-Type") != "image/jpeg" {
		t.Errorf("expected jpeg image, got %d %q", imgResp.StatusCode, imgResp.Header.Get("Content-Type"))
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _ := setupTestServer(t)

	for _, path := range []string{"/api/posts", "/api/posts/search?q=x", "/api/users/me"} {
		resp := do(t, "GET", server.URL+path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, resp.StatusCode)
		}
	}
}

func TestInvalidPostID(t *testing.T) {
	server, database := setupTestServer(t)
	createUser(t, database, "alice", model.RoleUser)
	token := login(t, server, "alice").Token

	resp := do(t, "GET", server.URL+"/api/posts/abc", token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func jsonID(id int64) string {
	data, _ := json.Marshal(id)
	return string(data)
}

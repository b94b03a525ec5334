package scrape

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
)

func privateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = key
	})
	return testKey
}

func keyMaterial(key *rsa.PublicKey) (string, string) {
	return base64.StdEncoding.EncodeToString(key.N.Bytes()),
		base64.StdEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes())
}

// fakePortal mimics the login and timetable endpoints of the portal.
type fakePortal struct {
	t        *testing.T
	key      *rsa.PrivateKey
	username string
	password string

	loginPage   string
	keyBody     string
	loginStatus int

	mu        sync.Mutex
	requests  int
	loginBody string
	loggedIn  bool
}

func newFakePortal(t *testing.T) (*fakePortal, *httptest.Server) {
	p := &fakePortal{
		t:           t,
		key:         privateKey(t),
		username:    "201900",
		password:    "hunter2",
		loginPage:   `<form><input type="hidden" id="csrftoken" name="csrftoken" value="tok-123"/></form>`,
		loginStatus: http.StatusOK,
	}
	n, e := keyMaterial(&p.key.PublicKey)
	p.keyBody = fmt.Sprintf(`{"modulus":%q,"exponent":%q}`, n, e)

	mux := http.NewServeMux()
	mux.HandleFunc("/jwglxt/xtgl/login_slogin.html", p.login)
	mux.HandleFunc("/jwglxt/xtgl/login_getPublicKey.html", p.publicKey)
	mux.HandleFunc("/jwglxt/kbcx/xskbcx_cxXsKb.html", p.schedule)
	srv := httptest.NewServer(p.count(mux))
	t.Cleanup(srv.Close)
	return p, srv
}

func (p *fakePortal) count(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.requests++
		p.mu.Unlock()
		h.ServeHTTP(w, r)
	})
}

func (p *fakePortal) login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "session-1", Path: "/"})
		_, _ = io.WriteString(w, p.loginPage)
		return
	}

	raw, _ := io.ReadAll(r.Body)
	p.mu.Lock()
	p.loginBody = string(raw)
	p.mu.Unlock()

	form, _ := url.ParseQuery(string(raw))
	if !p.hasSession(r) || form.Get("csrftoken") != "tok-123" || !p.validPassword(form["mm"]) || form.Get("yhm") != p.username {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `<html><p id="tips" class="bg_danger"> 用户名或密码不正确，请重新输入！</p></html>`)
		return
	}

	p.mu.Lock()
	p.loggedIn = true
	p.mu.Unlock()
	w.WriteHeader(p.loginStatus)
	_, _ = io.WriteString(w, `<html><a href="#">修改密码</a></html>`)
}

func (p *fakePortal) hasSession(r *http.Request) bool {
	c, err := r.Cookie("JSESSIONID")
	return err == nil && c.Value == "session-1"
}

func (p *fakePortal) validPassword(mm []string) bool {
	if len(mm) != 2 || mm[0] != mm[1] {
		return false
	}
	ciphertext, err := base64.StdEncoding.DecodeString(mm[0])
	if err != nil {
		return false
	}
	plain, err := rsa.DecryptPKCS1v15(nil, p.key, ciphertext)
	return err == nil && string(plain) == p.password
}

func (p *fakePortal) publicKey(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, p.keyBody)
}

func (p *fakePortal) schedule(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	loggedIn := p.loggedIn
	p.mu.Unlock()
	if r.Method != http.MethodPost || !p.hasSession(r) || !loggedIn || r.URL.Query().Get("gnmkdm") != "N2151" {
		w.WriteHeader(http.StatusFound)
		_, _ = io.WriteString(w, "<html>login required</html>")
		return
	}
	_ = r.ParseForm()
	_, _ = fmt.Fprintf(w, `{"xnm":%q,"xqm":%q,"kbList":[]}`, r.PostForm.Get("xnm"), r.PostForm.Get("xqm"))
}

func (p *fakePortal) requestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests
}

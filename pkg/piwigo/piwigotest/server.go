// Package piwigotest provides an in-process stand-in for a Piwigo web
// service. It implements the session and album methods used by the piwigo
// client, keeps its album tree in memory and records every call so tests can
// assert on the exact requests a client made.
package piwigotest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tidwall/sjson"

	"github.com/pwgsync/pwgsync/internal/common/logtrace"
	"github.com/pwgsync/pwgsync/internal/common/middleware"
)

const sessionCookie = "pwg_id"

// Call is one recorded web service request.
type Call struct {
	Method    string
	Form      url.Values
	RequestID string // X-Request-ID sent by the client, if any
}

// Album is an album held by the fake server.
type Album struct {
	ID       int64
	Name     string
	ParentID int64 // 0 for a top level album
}

type cannedReply struct {
	status int
	body   string
}

// Server is a fake Piwigo web service.
type Server struct {
	*httptest.Server

	mu              sync.Mutex
	uploadFileTypes string
	version         string
	users    map[string]string
	sessions map[string]string // session cookie -> user name
	albums   []Album
	nextID   int64
	calls    []Call
	canned   map[string][]cannedReply
}

// NewServer starts a fake server. The web service answers at /ws.php and at
// /{gallery}/ws.php, so base URLs with a path prefix work too.
func NewServer() *Server {
	s := &Server{
		uploadFileTypes: "jpg,jpeg,png,gif",
		version:         "14.5.0",
		users:           map[string]string{},
		sessions:        map[string]string{},
		nextID:          1,
		canned:          map[string][]cannedReply{},
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger, middleware.PanicHandler)
	r.Post("/ws.php", s.serveAPI)
	r.Post("/{gallery}/ws.php", s.serveAPI)
	s.Server = httptest.NewServer(r)
	return s
}

// AddUser registers an administrator account.
func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = password
}

// SetUploadFileTypes sets the extension list reported by getStatus.
func (s *Server) SetUploadFileTypes(list string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadFileTypes = list
}

// SetVersion sets the server version reported by getStatus.
func (s *Server) SetVersion(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = v
}

// AddAlbum creates an album directly, bypassing the web service. A parent of
// 0 creates a top level album.
func (s *Server) AddAlbum(name string, parent int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAlbumLocked(name, parent)
}

func (s *Server) addAlbumLocked(name string, parent int64) int64 {
	id := s.nextID
	s.nextID++
	s.albums = append(s.albums, Album{ID: id, Name: name, ParentID: parent})
	return id
}

// Albums returns a copy of the album tree ordered by id.
func (s *Server) Albums() []Album {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]Album(nil), s.albums...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Calls returns every recorded call, optionally filtered by method name.
func (s *Server) Calls(method ...string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if len(method) == 0 || c.Method == method[0] {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls forgets the recorded calls.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// ReplyOnce makes the next call to method answer with the given HTTP status
// and raw body instead of the regular handler. Replies queue up in order.
func (s *Server) ReplyOnce(method string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canned[method] = append(s.canned[method], cannedReply{status: status, body: body})
}

func (s *Server) serveAPI(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeRaw(w, http.StatusBadRequest, "bad form")
		return
	}
	method := r.URL.Query().Get("method")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{
		Method:    method,
		Form:      r.PostForm,
		RequestID: r.Header.Get(logtrace.RequestIDHeader),
	})

	if queue := s.canned[method]; len(queue) > 0 {
		s.canned[method] = queue[1:]
		writeRaw(w, queue[0].status, queue[0].body)
		return
	}

	if r.URL.Query().Get("format") != "json" {
		writeRaw(w, http.StatusOK, "<?xml version=\"1.0\"?><rsp stat=\"fail\"/>")
		return
	}

	user := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		user = s.sessions[c.Value]
	}

	switch method {
	case "pwg.session.login":
		s.login(w, r)
	case "pwg.session.logout":
		if c, err := r.Cookie(sessionCookie); err == nil {
			delete(s.sessions, c.Value)
		}
		writeOK(w, true)
	case "pwg.session.getStatus":
		s.status(w, r, user)
	case "pwg.categories.getAdminList":
		if user == "" {
			writeFail(w, http.StatusUnauthorized, 401, "Access denied")
			return
		}
		s.adminList(w)
	case "pwg.categories.Add":
		if user == "" {
			writeFail(w, http.StatusUnauthorized, 401, "Access denied")
			return
		}
		s.addCategory(w, r)
	default:
		writeFail(w, http.StatusNotImplemented, 501, "Method name is not valid")
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if pw, ok := s.users[username]; !ok || pw != password || username == "" {
		writeFail(w, http.StatusOK, 999, "Invalid username/password")
		return
	}
	id := uuid.NewString()
	s.sessions[id] = username
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/"})
	writeOK(w, true)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request, user string) {
	body := `{"stat":"ok"}`
	status := "webmaster"
	token := ""
	if user == "" {
		user = "guest"
		status = "guest"
	} else if c, err := r.Cookie(sessionCookie); err == nil {
		token = "tok-" + c.Value[:8]
	}
	body, _ = sjson.Set(body, "result.username", user)
	body, _ = sjson.Set(body, "result.status", status)
	body, _ = sjson.Set(body, "result.theme", "modus")
	body, _ = sjson.Set(body, "result.language", "en_GB")
	body, _ = sjson.Set(body, "result.pwg_token", token)
	body, _ = sjson.Set(body, "result.charset", "utf-8")
	body, _ = sjson.Set(body, "result.current_datetime", "2026-10-18 12:00:00")
	body, _ = sjson.Set(body, "result.version", s.version)
	body, _ = sjson.Set(body, "result.available_sizes", []string{"square", "thumb", "medium"})
	body, _ = sjson.Set(body, "result.upload_file_types", s.uploadFileTypes)
	body, _ = sjson.Set(body, "result.upload_form_chunk_size", 500)
	writeRaw(w, http.StatusOK, body)
}

// adminList mirrors the real server, which sends ids as strings.
func (s *Server) adminList(w http.ResponseWriter) {
	body := `{"stat":"ok","result":{"categories":[]}}`
	for _, a := range s.albums {
		entry := map[string]any{
			"id":          strconv.FormatInt(a.ID, 10),
			"name":        a.Name,
			"comment":     nil,
			"uppercats":   s.uppercatsLocked(a),
			"status":      "public",
			"nb_images":   "0",
			"id_uppercat": nil,
		}
		if a.ParentID != 0 {
			entry["id_uppercat"] = strconv.FormatInt(a.ParentID, 10)
		}
		body, _ = sjson.Set(body, "result.categories.-1", entry)
	}
	writeRaw(w, http.StatusOK, body)
}

func (s *Server) uppercatsLocked(a Album) string {
	out := strconv.FormatInt(a.ID, 10)
	for parent := a.ParentID; parent != 0; {
		out = strconv.FormatInt(parent, 10) + "," + out
		next := int64(0)
		for _, p := range s.albums {
			if p.ID == parent {
				next = p.ParentID
				break
			}
		}
		parent = next
	}
	return out
}

func (s *Server) addCategory(w http.ResponseWriter, r *http.Request) {
	name := r.PostForm.Get("name")
	if name == "" {
		writeFail(w, http.StatusOK, 1003, "Missing parameters: name")
		return
	}
	var parent int64
	if p := r.PostForm.Get("parent"); p != "" {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil || !s.hasAlbumLocked(v) {
			writeFail(w, http.StatusOK, 1004, "Invalid parameters: parent")
			return
		}
		parent = v
	}
	id := s.addAlbumLocked(name, parent)
	body := `{"stat":"ok"}`
	body, _ = sjson.Set(body, "result.info", "Album added")
	body, _ = sjson.Set(body, "result.id", id)
	writeRaw(w, http.StatusOK, body)
}

func (s *Server) hasAlbumLocked(id int64) bool {
	for _, a := range s.albums {
		if a.ID == id {
			return true
		}
	}
	return false
}

func writeOK(w http.ResponseWriter, result any) {
	body, _ := sjson.Set(`{"stat":"ok"}`, "result", result)
	writeRaw(w, http.StatusOK, body)
}

func writeFail(w http.ResponseWriter, httpStatus, code int, message string) {
	body := `{"stat":"fail"}`
	body, _ = sjson.Set(body, "err", code)
	body, _ = sjson.Set(body, "message", message)
	writeRaw(w, httpStatus, body)
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

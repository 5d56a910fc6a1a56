package render

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"reminder-board/component"
	"reminder-board/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type Renderer struct {
	tmpl *template.Template
}

type listData struct {
	Tasks []entity.Task
	Error string
}

type pageData struct {
	listData
	MaxTextLength      int
	ScanIntervalMillis int64
	DeleteDelayMillis  int64
}

func New() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

// TaskList writes the #task_list fragment. errMsg, when set, is shown above the cards.
func (r *Renderer) TaskList(w io.Writer, tasks []entity.Task, errMsg string) error {
	return r.tmpl.ExecuteTemplate(w, "task_list", listData{Tasks: tasks, Error: errMsg})
}

func (r *Renderer) Page(w io.Writer, tasks []entity.Task) error {
	return r.tmpl.ExecuteTemplate(w, "page", pageData{
		listData:           listData{Tasks: tasks},
		MaxTextLength:      component.MaxTextLength,
		ScanIntervalMillis: component.ScanInterval.Milliseconds(),
		DeleteDelayMillis:  component.DeleteDelay.Milliseconds(),
	})
}

// StaticHandler serves the embedded browser assets under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

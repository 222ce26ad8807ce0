package main

const ViewLinkLabel = "View"

type ViewStatus int

const (
	StatusLoading ViewStatus = iota
	StatusError
	StatusReady
)

func (s ViewStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusReady:
		return "ready"
	}
	return "unknown"
}

type Row struct {
	Description  string `json:"description"`
	AltText      string `json:"alt"`
	ThumbnailUrl string `json:"thumbnailUrl"`
	PageUrl      string `json:"pageUrl"`
	LinkLabel    string `json:"-"`
}

// View is what a renderer draws. Message is only set for StatusError and
// Rows only for StatusReady.
type View struct {
	Status     ViewStatus
	Message    string
	SearchTerm string
	Rows       []Row
}

func (v View) Loading() bool { return v.Status == StatusLoading }

func (v View) Failed() bool { return v.Status == StatusError }

func (v View) Ready() bool { return v.Status == StatusReady }

// Project maps a snapshot to exactly one of the loading, error or ready views.
func Project(s Snapshot) View {
	v := View{SearchTerm: s.SearchTerm}
	switch {
	case s.IsLoading:
		v.Status = StatusLoading
	case s.HasError():
		v.Status = StatusError
		v.Message = s.LastError
	default:
		v.Status = StatusReady
		visible := FilterPhotos(s.Photos, s.SearchTerm)
		v.Rows = make([]Row, len(visible))
		for i, photo := range visible {
			alt := photo.AltDescription
			if alt == "" {
				alt = NoDescription
			}
			v.Rows[i] = Row{
				Description:  photo.DisplayDescription(),
				AltText:      alt,
				ThumbnailUrl: photo.ThumbnailUrl,
				PageUrl:      photo.PageUrl,
				LinkLabel:    ViewLinkLabel,
			}
		}
	}
	return v
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

const DefaultUnsplashEndpoint = "https://api.unsplash.com/photos/random"

type UnsplashPhoto struct {
	Id             string             `json:"id"`
	Description    *string            `json:"description"`
	AltDescription *string            `json:"alt_description"`
	User           UnsplashUser       `json:"user"`
	Urls           UnsplashUrls       `json:"urls"`
	Links          UnsplashPhotoLinks `json:"links"`
}

type UnsplashUser struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type UnsplashPhotoLinks struct {
	Self     string `json:"self"`
	Html     string `json:"html"`
	Download string `json:"download"`
}

type UnsplashUrls struct {
	Raw     string `json:"raw"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// ErrFetch matches every *FetchError with errors.Is.
var ErrFetch = errors.New("fetch failed")

// FetchError covers transport, status and decode failures alike. Messages
// never carry the access key.
type FetchError struct {
	Message string
	Status  int
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

type UnsplashApi struct {
	Http      http.Client
	accessKey string
	baseUrl   string
	count     int
	query     string
	log       *zap.Logger
}

func NewUnsplashApi(cfg *Config, logger *zap.Logger) *UnsplashApi {
	baseUrl := cfg.Unsplash.Endpoint
	if baseUrl == "" {
		baseUrl = DefaultUnsplashEndpoint
	}
	return &UnsplashApi{
		Http:      http.Client{Timeout: cfg.Unsplash.Timeout},
		accessKey: cfg.Unsplash.AccessKey,
		baseUrl:   baseUrl,
		count:     cfg.Gallery.Count,
		query:     cfg.Gallery.Query,
		log:       logger.Named("unsplash"),
	}
}

// Fetch issues a single request for a batch of random photos. It does not
// retry, page or cache.
func (unsp *UnsplashApi) Fetch(ctx context.Context) ([]PhotoRecord, error) {
	if unsp.accessKey == "" {
		return nil, &FetchError{Message: "unsplash access key not configured"}
	}
	qParam := url.Values{}
	qParam.Add("count", strconv.Itoa(unsp.count))
	qParam.Add("query", unsp.query)
	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, unsp.baseUrl+"?"+qParam.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Message: "failed to create request", Err: err}
	}
	getReq.Header.Set("Accept-Version", "v1")
	getReq.Header.Set("Authorization", "Client-ID "+unsp.accessKey)

	unsp.log.Debug("fetching photos", zap.Int("count", unsp.count), zap.String("query", unsp.query))
	res, err := unsp.Http.Do(getReq)
	if err != nil {
		return nil, &FetchError{Message: "request failed", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &FetchError{
			Message: fmt.Sprintf("unexpected status %d", res.StatusCode),
			Status:  res.StatusCode,
		}
	}

	var data []UnsplashPhoto
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return nil, &FetchError{Message: "failed to decode response", Status: res.StatusCode, Err: err}
	}
	output := make([]PhotoRecord, len(data))
	for i, el := range data {
		output[i].Id = el.Id
		if el.AltDescription != nil {
			output[i].AltDescription = *el.AltDescription
		}
		output[i].ThumbnailUrl = el.Urls.Thumb
		output[i].PageUrl = el.Links.Html
		output[i].Artist = el.User.Name
	}
	unsp.log.Debug("fetched photos", zap.Int("received", len(output)))
	return output, nil
}

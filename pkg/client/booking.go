package client

import (
	"fmt"
	"net/url"
)

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *BookingClient) Create(body any, accessToken string) (*Response, error) {
	return c.httpClient.POSTWithHeaders("/api/v1/bookings", body, bearer(accessToken))
}

func (c *BookingClient) GetAll(limit int, offset int64, accessToken string) (*Response, error) {
	path := fmt.Sprintf("/api/v1/bookings?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GETWithHeaders(path, bearer(accessToken))
}

func (c *BookingClient) Search(patientID string, attended string, feePaid string, limit int, offset int64, accessToken string) (*Response, error) {
	q := url.Values{}
	if patientID != "" {
		q.Set("patientId", patientID)
	}
	if attended != "" {
		q.Set("attended", attended)
	}
	if feePaid != "" {
		q.Set("feePaid", feePaid)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	path := "/api/v1/bookings?" + q.Encode()
	return c.httpClient.GETWithHeaders(path, bearer(accessToken))
}

func (c *BookingClient) GetByID(id string, accessToken string) (*Response, error) {
	path := "/api/v1/bookings/" + url.PathEscape(id)
	return c.httpClient.GETWithHeaders(path, bearer(accessToken))
}

func (c *BookingClient) Update(id string, body any, accessToken string) (*Response, error) {
	path := "/api/v1/bookings/" + url.PathEscape(id)
	return c.httpClient.PUTWithHeaders(path, body, bearer(accessToken))
}

func (c *BookingClient) Delete(id string, accessToken string) (*Response, error) {
	path := "/api/v1/bookings/" + url.PathEscape(id)
	return c.httpClient.DELETEWithHeaders(path, bearer(accessToken))
}

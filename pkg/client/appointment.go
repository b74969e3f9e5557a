package client

import (
	"fmt"
	"net/url"
)

type AppointmentClient struct {
	httpClient *HttpClient
}

func NewAppointmentClient(baseUrl string) *AppointmentClient {
	return &AppointmentClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *AppointmentClient) Create(body any, accessToken string) (*Response, error) {
	return c.httpClient.POSTWithHeaders("/api/v1/appointments", body, bearer(accessToken))
}

func (c *AppointmentClient) GetAll(limit int, offset int64, accessToken string) (*Response, error) {
	path := fmt.Sprintf("/api/v1/appointments?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GETWithHeaders(path, bearer(accessToken))
}

func (c *AppointmentClient) Search(doctorID string, booked string, fromTime string, toTime string, limit int, offset int64, accessToken string) (*Response, error) {
	q := url.Values{}
	if doctorID != "" {
		q.Set("doctorId", doctorID)
	}
	if booked != "" {
		q.Set("booked", booked)
	}
	if fromTime != "" {
		q.Set("fromTime", fromTime)
	}
	if toTime != "" {
		q.Set("toTime", toTime)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	path := "/api/v1/appointments?" + q.Encode()
	return c.httpClient.GETWithHeaders(path, bearer(accessToken))
}

func (c *AppointmentClient) GetByID(id string, accessToken string) (*Response, error) {
	path := "/api/v1/appointments/" + url.PathEscape(id)
	return c.httpClient.GETWithHeaders(path, bearer(accessToken))
}

func (c *AppointmentClient) Update(id string, body any, accessToken string) (*Response, error) {
	path := "/api/v1/appointments/" + url.PathEscape(id)
	return c.httpClient.PUTWithHeaders(path, body, bearer(accessToken))
}

func (c *AppointmentClient) Delete(id string, accessToken string) (*Response, error) {
	path := "/api/v1/appointments/" + url.PathEscape(id)
	return c.httpClient.DELETEWithHeaders(path, bearer(accessToken))
}

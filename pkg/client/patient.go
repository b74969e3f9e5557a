package client

import (
	"fmt"
	"net/url"
)

type PatientClient struct {
	httpClient *HttpClient
}

func NewPatientClient(baseUrl string) *PatientClient {
	return &PatientClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *PatientClient) Create(body any, accessToken string) (*Response, error) {
	return c.httpClient.POSTWithHeaders("/api/v1/patients", body, bearer(accessToken))
}

func (c *PatientClient) GetAll(limit int, offset int64, accessToken string) (*Response, error) {
	path := fmt.Sprintf("/api/v1/patients?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GETWithHeaders(path, bearer(accessToken))
}

func (c *PatientClient) GetByID(id string, accessToken string) (*Response, error) {
	path := "/api/v1/patients/" + url.PathEscape(id)
	return c.httpClient.GETWithHeaders(path, bearer(accessToken))
}

func (c *PatientClient) Update(id string, body any, accessToken string) (*Response, error) {
	path := "/api/v1/patients/" + url.PathEscape(id)
	return c.httpClient.PUTWithHeaders(path, body, bearer(accessToken))
}

func (c *PatientClient) Delete(id string, accessToken string) (*Response, error) {
	path := "/api/v1/patients/" + url.PathEscape(id)
	return c.httpClient.DELETEWithHeaders(path, bearer(accessToken))
}

package client

import (
	"fmt"
	"net/url"
)

type DoctorClient struct {
	httpClient *HttpClient
}

func NewDoctorClient(baseUrl string) *DoctorClient {
	return &DoctorClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *DoctorClient) Create(body any, accessToken string) (*Response, error) {
	return c.httpClient.POSTWithHeaders("/api/v1/doctors", body, bearer(accessToken))
}

func (c *DoctorClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/doctors?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *DoctorClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/doctors/" + url.PathEscape(id))
}

func (c *DoctorClient) Update(id string, body any, accessToken string) (*Response, error) {
	path := "/api/v1/doctors/" + url.PathEscape(id)
	return c.httpClient.PUTWithHeaders(path, body, bearer(accessToken))
}

func (c *DoctorClient) Delete(id string, accessToken string) (*Response, error) {
	path := "/api/v1/doctors/" + url.PathEscape(id)
	return c.httpClient.DELETEWithHeaders(path, bearer(accessToken))
}

func bearer(accessToken string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + accessToken}
}

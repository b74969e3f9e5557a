package client

import "mediq/pkg/model"

type AuthClient struct {
	httpClient *HttpClient
}

func NewAuthClient(baseUrl string) *AuthClient {
	return &AuthClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *AuthClient) Register(email, password string) (*Response, error) {
	return c.httpClient.POST("/api/v1/register", model.RegisterRequest{
		Email:    email,
		Password: password,
	})
}

func (c *AuthClient) Login(email, password string) (*Response, error) {
	return c.httpClient.POST("/api/v1/login", model.LoginRequest{
		Email:    email,
		Password: password,
	})
}

func (c *AuthClient) Refresh(refreshToken string) (*Response, error) {
	return c.httpClient.POST("/api/v1/refreshToken", model.RefreshRequest{
		RefreshToken: refreshToken,
	})
}

func (c *AuthClient) Logout(refreshToken string) (*Response, error) {
	return c.httpClient.DELETEWithBody("/api/v1/refreshToken", model.RefreshRequest{
		RefreshToken: refreshToken,
	})
}

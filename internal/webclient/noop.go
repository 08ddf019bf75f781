package webclient

import "context"

// NoopClient is the typed "no internet access" WebClient: every page is
// inaccessible, every search is empty, and no evidence request is answered.
// safety.NewExternalValidator treats it the same as a nil client.
type NoopClient struct{}

var _ WebClient = NoopClient{}

func (NoopClient) FetchPage(ctx context.Context, url string) (WebPage, error) {
	return WebPage{URL: url, Accessible: false, Error: "web access not configured"}, nil
}

func (NoopClient) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	return nil, nil
}

func (NoopClient) RequestEvidence(ctx context.Context, req EvidenceRequest) (EvidenceResponse, bool) {
	return EvidenceResponse{}, false
}

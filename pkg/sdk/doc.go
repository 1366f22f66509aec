// Package sdk is an HTTP client for the regsearch API.
//
//	c, _ := sdk.New(sdk.WithBaseURL("http://localhost:8080"), sdk.WithTimeout(2*time.Second))
//	res, err := c.Search(ctx, sdk.SearchRequest{Query: "employment insurance eligibility", Limit: 5})
//	var apiErr *sdk.APIError
//	if errors.As(err, &apiErr) && apiErr.IsInvalidQuery() {
//	    // fix the input
//	}
//
// Context retrieval for answer generation:
//
//	rc, _ := c.Context(ctx, sdk.ContextRequest{Question: "who qualifies for sickness benefits?"})
//	prompt := rc.Text // "[1] S.C. 1996, c. 23, s. 21 — ..."
package sdk

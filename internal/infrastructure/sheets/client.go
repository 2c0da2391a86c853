// Package sheets implements the tabular store on a Google Sheets spreadsheet.
package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// api is the slice of the Sheets REST surface the store needs.
type api interface {
	sheetTitles(ctx context.Context) ([]string, error)
	batchGet(ctx context.Context, ranges []string) ([][][]interface{}, error)
	update(ctx context.Context, rng string, values [][]interface{}) error
	append(ctx context.Context, rng string, values [][]interface{}) error
	addSheets(ctx context.Context, titles []string) error
}

type googleAPI struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// newGoogleAPI authenticates with a service-account key.
func newGoogleAPI(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*googleAPI, error) {
	jwtCfg, err := google.JWTConfigFromJSON(credentialsJSON, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	// token refreshes must not die with the startup context
	httpClient := jwtCfg.Client(context.WithoutCancel(ctx))

	svc, err := gsheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &googleAPI{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (g *googleAPI) sheetTitles(ctx context.Context) ([]string, error) {
	resp, err := g.svc.Spreadsheets.Get(g.spreadsheetID).
		Fields(googleapi.Field("spreadsheetId,sheets(properties(sheetId,title))")).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil && s.Properties.Title != "" {
			titles = append(titles, s.Properties.Title)
		}
	}
	return titles, nil
}

func (g *googleAPI) batchGet(ctx context.Context, ranges []string) ([][][]interface{}, error) {
	resp, err := g.svc.Spreadsheets.Values.BatchGet(g.spreadsheetID).Ranges(ranges...).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	out := make([][][]interface{}, len(ranges))
	for i := range ranges {
		if i < len(resp.ValueRanges) && resp.ValueRanges[i] != nil {
			out[i] = resp.ValueRanges[i].Values
		}
	}
	return out, nil
}

func (g *googleAPI) update(ctx context.Context, rng string, values [][]interface{}) error {
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (g *googleAPI) append(ctx context.Context, rng string, values [][]interface{}) error {
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, rng, &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

func (g *googleAPI) addSheets(ctx context.Context, titles []string) error {
	requests := make([]*gsheets.Request, 0, len(titles))
	for _, title := range titles {
		requests = append(requests, &gsheets.Request{
			AddSheet: &gsheets.AddSheetRequest{Properties: &gsheets.SheetProperties{Title: title}},
		})
	}
	_, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).Do()
	return err
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nlp

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"

	"doclens/internal/resilience"
)

// DetectEntities accepts at most 100 KB of UTF-8 per request.
const comprehendMaxBytes = 90 * 1024

// ComprehendAPI is the subset of the Comprehend client used here.
type ComprehendAPI interface {
	DetectEntities(ctx context.Context, params *comprehend.DetectEntitiesInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectEntitiesOutput, error)
}

// ComprehendRecognizer recognizes entities with Amazon Comprehend.
type ComprehendRecognizer struct {
	client  ComprehendAPI
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewComprehendRecognizer loads the default AWS configuration for region.
func NewComprehendRecognizer(ctx context.Context, region string) (*ComprehendRecognizer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewComprehendRecognizerWithClient(comprehend.NewFromConfig(cfg)), nil
}

// NewComprehendRecognizerWithClient wraps an existing client.
func NewComprehendRecognizerWithClient(client ComprehendAPI) *ComprehendRecognizer {
	return &ComprehendRecognizer{
		client:  client,
		retry:   resilience.DefaultRetryConfig(),
		breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("comprehend")),
	}
}

func (c *ComprehendRecognizer) Name() string { return "comprehend" }

// Recognize sends the text in chunks and maps ORGANIZATION and DATE entities.
// Offsets are byte offsets into text.
func (c *ComprehendRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	var entities []Entity

	for _, chunk := range chunkText(text, comprehendMaxBytes) {
		out, err := resilience.RetryWithCircuitBreaker(ctx, c.retry, c.breaker,
			func(ctx context.Context) (*comprehend.DetectEntitiesOutput, error) {
				return c.client.DetectEntities(ctx, &comprehend.DetectEntitiesInput{
					Text:         aws.String(chunk.text),
					LanguageCode: types.LanguageCodeEn,
				})
			})
		if err != nil {
			return nil, fmt.Errorf("comprehend DetectEntities failed: %w", err)
		}

		for _, e := range out.Entities {
			label := ""
			switch e.Type {
			case types.EntityTypeOrganization:
				label = LabelOrg
			case types.EntityTypeDate:
				label = LabelDate
			default:
				continue
			}
			entity := Entity{
				Text:  aws.ToString(e.Text),
				Label: label,
				Score: float64(aws.ToFloat32(e.Score)),
			}
			entity.Start, entity.End = locate(chunk.text, entity.Text, runeToByte(chunk.text, int(aws.ToInt32(e.BeginOffset))))
			entity.Start += chunk.offset
			entity.End += chunk.offset
			entities = append(entities, entity)
		}
	}

	return resolveOverlaps(entities), nil
}

type textChunk struct {
	text   string
	offset int
}

// chunkText splits on whitespace so that each chunk stays under limit bytes.
func chunkText(text string, limit int) []textChunk {
	var chunks []textChunk
	offset := 0
	for len(text) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if ws := strings.LastIndexFunc(text[:cut], unicode.IsSpace); ws > limit/2 {
			cut = ws + 1
		}
		chunks = append(chunks, textChunk{text: text[:cut], offset: offset})
		offset += cut
		text = text[cut:]
	}
	if strings.TrimSpace(text) != "" {
		chunks = append(chunks, textChunk{text: text, offset: offset})
	}
	return chunks
}

// Comprehend offsets count characters; they are converted to bytes and verified.
func runeToByte(s string, runeOffset int) int {
	i := 0
	for pos := range s {
		if i == runeOffset {
			return pos
		}
		i++
	}
	return len(s)
}

func locate(s, needle string, hint int) (int, int) {
	if hint >= 0 && hint+len(needle) <= len(s) && s[hint:hint+len(needle)] == needle {
		return hint, hint + len(needle)
	}
	if idx := strings.Index(s, needle); idx >= 0 {
		return idx, idx + len(needle)
	}
	return hint, hint
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nlp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclens/internal/resilience"
)

type fakeComprehend struct {
	calls int
	err   error
}

func (f *fakeComprehend) DetectEntities(ctx context.Context, in *comprehend.DetectEntitiesInput, _ ...func(*comprehend.Options)) (*comprehend.DetectEntitiesOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	text := aws.ToString(in.Text)
	var out []types.Entity
	add := func(needle string, typ types.EntityType, score float32) {
		if idx := strings.Index(text, needle); idx >= 0 {
			out = append(out, types.Entity{
				Text:        aws.String(needle),
				Type:        typ,
				Score:       aws.Float32(score),
				BeginOffset: aws.Int32(int32(len([]rune(text[:idx])))),
				EndOffset:   aws.Int32(int32(len([]rune(text[:idx+len(needle)])))),
			})
		}
	}
	add("Globex", types.EntityTypeOrganization, 0.98)
	add("last Tuesday", types.EntityTypeDate, 0.91)
	add("Springfield", types.EntityTypeLocation, 0.99)
	return &comprehend.DetectEntitiesOutput{Entities: out}, nil
}

func TestComprehendRecognizerMapsLabels(t *testing.T) {
	fake := &fakeComprehend{}
	r := NewComprehendRecognizerWithClient(fake)

	text := "Größe: Globex signed in Springfield last Tuesday."
	entities, err := r.Recognize(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, entities, 2)

	assert.Equal(t, Entity{Text: "Globex", Label: LabelOrg, Start: strings.Index(text, "Globex"), End: strings.Index(text, "Globex") + 6, Score: float64(float32(0.98))}, entities[0])
	assert.Equal(t, LabelDate, entities[1].Label)
	assert.Equal(t, "last Tuesday", text[entities[1].Start:entities[1].End])
	assert.Equal(t, 1, fake.calls)
}

func TestComprehendRecognizerPermanentError(t *testing.T) {
	fake := &fakeComprehend{err: resilience.NewPermanentError("AccessDeniedException", nil)}
	r := NewComprehendRecognizerWithClient(fake)
	_, err := r.Recognize(context.Background(), "Acme Corp")
	require.Error(t, err)
	assert.Equal(t, 1, fake.calls)
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestChunkText(t *testing.T) {
	text := strings.Repeat("word ", 50)
	chunks := chunkText(text, 32)
	var rebuilt strings.Builder
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.text), 32)
		assert.Equal(t, rebuilt.Len(), c.offset)
		rebuilt.WriteString(c.text)
	}
	assert.Equal(t, strings.TrimRight(text, " "), strings.TrimRight(rebuilt.String(), " "))
}

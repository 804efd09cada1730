package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
)

func TestLocalNLP_ExtractEntities(t *testing.T) {
	text := "الطرف الأول: وزارة التعليم\nموقع المشروع: جدة\nالقيمة 12,000,000 ريال والضمان 5% بتاريخ 2024-03-01"

	res := LocalNLP{}.ExtractEntities(context.Background(), text)
	require.False(t, res.Degraded)

	labels := map[string]string{}
	for _, e := range res.Entities {
		labels[e.Text] = e.Label
		assert.Equal(t, e.Text, text[e.Start:e.End])
	}
	assert.Equal(t, EntityOrganization, labels["وزارة التعليم"])
	assert.Equal(t, EntityLocation, labels["جدة"])
	assert.Equal(t, EntityMoney, labels["12,000,000 ريال"])
	assert.Equal(t, EntityPercent, labels["5%"])
	assert.Equal(t, EntityDate, labels["2024-03-01"])

	for i := 1; i < len(res.Entities); i++ {
		assert.GreaterOrEqual(t, res.Entities[i].Start, res.Entities[i-1].End)
	}
}

func TestLocalNLP_OverlapKeepsLongest(t *testing.T) {
	res := LocalNLP{}.ExtractEntities(context.Background(), "أمانة منطقة الرياض")
	require.Len(t, res.Entities, 1)
	assert.Equal(t, EntityOrganization, res.Entities[0].Label)
	assert.Equal(t, "أمانة منطقة الرياض", res.Entities[0].Text)
}

func TestLocalNLP_Summarize(t *testing.T) {
	text := "مدة تنفيذ المشروع ثمانية عشر شهراً من تاريخ تسليم الموقع.\n" +
		"قيمة المشروع خمسة وعشرون مليون ريال.\n" +
		"يلتزم المقاول بتنفيذ المشروع وفق المواصفات وتسليم المشروع في موعده.\n" +
		"شكراً."

	res := LocalNLP{}.Summarize(context.Background(), text, 2)
	require.False(t, res.Degraded)
	assert.Contains(t, res.Text, "يلتزم المقاول بتنفيذ المشروع")
	assert.NotContains(t, res.Text, "شكراً")

	again := LocalNLP{}.Summarize(context.Background(), text, 2)
	assert.Equal(t, res.Text, again.Text)
}

func TestLocalNLP_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, LocalNLP{}.Summarize(ctx, "نص", 1).Degraded)
	assert.True(t, LocalNLP{}.ExtractEntities(ctx, "نص").Degraded)
}

func TestDisabledNLP(t *testing.T) {
	var nlp NLPAdapter = DisabledNLP{}
	s := nlp.Summarize(context.Background(), "نص طويل", 3)
	assert.True(t, s.Degraded)
	assert.Empty(t, s.Text)

	e := nlp.ExtractEntities(context.Background(), "وزارة التعليم")
	assert.True(t, e.Degraded)
	assert.Equal(t, []domain.NamedEntity{}, e.Entities)
}

func TestSummaryPrompt(t *testing.T) {
	p := SummaryPrompt(domain.KindContract, []string{"قيمة العقد: 25,000,000 ريال"}, "نص العقد")
	assert.Contains(t, p, "نوع المستند: عقد")
	assert.Contains(t, p, "- قيمة العقد: 25,000,000 ريال")
	assert.Contains(t, p, "نص العقد")

	assert.Equal(t, "أبج…", excerpt("أبجد", 3))
	assert.Equal(t, "أبجد", excerpt("أبجد", 4))
}

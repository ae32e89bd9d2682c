package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kinfolk/pkg/domain-errors"
)

func strPtr(s string) *string { return &s }

func TestCreatePersonRequestValidate(t *testing.T) {
	valid := func() CreatePersonRequest {
		return CreatePersonRequest{FullName: "  Ada Lovelace ", BirthDate: "1815-12-10", DeathDate: "1852-11-27"}
	}

	t.Run("accepts a normalised request", func(t *testing.T) {
		req := valid()
		req.Normalize()
		require.NoError(t, req.Validate())
		assert.Equal(t, "Ada Lovelace", req.FullName)
	})

	cases := map[string]struct {
		mutate func(r *CreatePersonRequest)
		msg    string
	}{
		"missing name":        {func(r *CreatePersonRequest) { r.FullName = "" }, "full_name is required"},
		"bad date":            {func(r *CreatePersonRequest) { r.BirthDate = "10/12/1815" }, "birth_date must be YYYY-MM-DD"},
		"death before birth":  {func(r *CreatePersonRequest) { r.DeathDate = "1800-01-01" }, "death_date cannot be before birth_date"},
		"unknown relation":    {func(r *CreatePersonRequest) { r.OriginID, r.Relation = "p1", "cousin" }, "relation must be one of: father mother spouse child"},
		"relation w/o origin": {func(r *CreatePersonRequest) { r.Relation = "child" }, "origin_id and relation must be given together"},
		"same parents":        {func(r *CreatePersonRequest) { r.FatherID, r.MotherID = "x", "x" }, "father_id and mother_id must differ"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := valid()
			tc.mutate(&req)
			err := req.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tc.msg, dErrors.Message(err))
		})
	}
}

func TestUpdatePersonRequestApply(t *testing.T) {
	p := Person{ID: "p1", FullName: "Old", BirthDate: MustDate("1900-01-01"), Bio: "keep"}

	t.Run("patches only given fields and clears dates", func(t *testing.T) {
		target := p
		req := UpdatePersonRequest{FullName: strPtr(" New "), BirthDate: strPtr("")}
		req.Normalize()
		require.NoError(t, req.Validate())
		require.NoError(t, req.Apply(&target))

		assert.Equal(t, "New", target.FullName)
		assert.Nil(t, target.BirthDate)
		assert.Equal(t, "keep", target.Bio)
	})

	t.Run("rejects death before existing birth", func(t *testing.T) {
		target := p
		req := UpdatePersonRequest{DeathDate: strPtr("1899-12-31")}
		err := req.Apply(&target)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Nil(t, target.DeathDate)
	})

	t.Run("rejects blank name", func(t *testing.T) {
		req := UpdatePersonRequest{FullName: strPtr("   ")}
		req.Normalize()
		assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeValidation))
	})
}

func TestCreateUnionRequestValidate(t *testing.T) {
	req := CreateUnionRequest{Person1ID: "a", Person2ID: "a"}
	err := req.Validate()
	require.Error(t, err)
	assert.Equal(t, "person2_id must differ from Person1ID", dErrors.Message(err))

	req = CreateUnionRequest{Person1ID: "a", Person2ID: "b", UnionDate: "2000-01-01", DivorceDate: "1999-01-01"}
	assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeValidation))

	req = CreateUnionRequest{Person1ID: "a", Person2ID: "b", Type: "Partnership"}
	req.Normalize()
	assert.NoError(t, req.Validate())
}

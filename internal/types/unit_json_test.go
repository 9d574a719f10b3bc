package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const backendUnit = `{
	"warehouseUnitId": "u1",
	"unitTags": "tag",
	"token": {"asset_id": "0xabc", "index": 2},
	"issuance": {"warehouseProjectId": "p1"}
}`

func TestUnitKeepsUndeclaredFields(t *testing.T) {
	var u Unit
	require.NoError(t, json.Unmarshal([]byte(backendUnit), &u))

	assert.Equal(t, "u1", u.WarehouseUnitID)
	assert.Equal(t, "p1", u.WarehouseProjectID())
	require.Len(t, u.Extra, 2)
	assert.JSONEq(t, `{"asset_id":"0xabc","index":2}`, string(u.Extra["token"]))

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, backendUnit, string(out))
}

func TestUnitWithoutExtraMarshalsDeclaredFields(t *testing.T) {
	var u Unit
	require.NoError(t, json.Unmarshal([]byte(`{"warehouseUnitId":"u1","vintageYear":2020}`), &u))
	assert.Nil(t, u.Extra)

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Equal(t, `{"warehouseUnitId":"u1","vintageYear":2020}`, string(out))
}

func TestUnitExtraCannotOverrideDeclaredField(t *testing.T) {
	u := Unit{WarehouseUnitID: "u1", Extra: map[string]json.RawMessage{
		"warehouseUnitId": json.RawMessage(`"other"`),
		"marketplaceNote": json.RawMessage(`"x"`),
	}}

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"warehouseUnitId":"u1","marketplaceNote":"x"}`, string(out))
}

func TestUnitYAMLIncludesExtra(t *testing.T) {
	var u Unit
	require.NoError(t, json.Unmarshal([]byte(`{"warehouseUnitId":"007","unitTags":"tag"}`), &u))

	out, err := yaml.Marshal([]Unit{u})
	require.NoError(t, err)

	var back []map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	require.Len(t, back, 1)
	assert.Equal(t, "007", back[0]["warehouseUnitId"])
	assert.Equal(t, "tag", back[0]["unitTags"])
	assert.NotContains(t, string(out), "{")
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/client-go/tools/cache"

	"gradient-sdk/conf"
)

func TestParseKeyValues(t *testing.T) {
	cases := []struct {
		str    string
		result map[string]string
	}{
		{
			str:    "uri=s3://bucket/a,tag=v1",
			result: map[string]string{"uri": "s3://bucket/a", "tag": "v1"},
		}, {
			str:    "uri=s3://bucket/a?x=1",
			result: map[string]string{"uri": "s3://bucket/a?x=1"},
		}, {
			str:    " uri=s3://a , ,auth",
			result: map[string]string{"uri": "s3://a", "auth": ""},
		}, {
			str:    "",
			result: map[string]string{},
		},
	}
	for i, c := range cases {
		result := ParseKeyValues(c.str)
		t.Logf("case #%d: %q => %v", i, c.str, result)
		assert.Equal(t, c.result, result)
	}
}

func TestInitLogger(t *testing.T) {
	assert.Nil(t, InitLogger(conf.LoggingConfig{Level: "debug"}))
	assert.NotNil(t, InitLogger(conf.LoggingConfig{Level: "loud"}))
	assert.Nil(t, InitLogger(conf.LoggingConfig{Level: "info"}))
}

func TestIndexedStore(t *testing.T) {
	type item struct{ key, group string }
	store := NewIndexedStore(cache.Indexers{
		"group": func(obj interface{}) ([]string, error) { return []string{obj.(item).group}, nil },
	})
	for _, i := range []item{{"c", "a"}, {"b", "b"}, {"a", "a"}, {"d", "c"}} {
		store.Add(i.key, i)
	}
	keyFunc := func(obj interface{}) string { return obj.(item).key }

	items, err := ListByIndexValues(store, keyFunc, "group", "a", "b", "a")
	assert.Nil(t, err)
	keys := []string{}
	for _, i := range items {
		keys = append(keys, keyFunc(i))
	}
	assert.Equal(t, []string{"a", "c", "b"}, keys)

	_, err = ListByIndexValues(store, keyFunc, "missing", "a")
	assert.NotNil(t, err)
	assert.Len(t, NewIndexedStore(nil).List(), 0)
}

/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package words

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultName is the name of the embedded word list.
const DefaultName = "romeo-and-juliet-word-list.json"

//go:embed data/romeo-and-juliet-word-list.json
var defaultList []byte

var (
	ErrFetch     = errors.New("unable to fetch word list")
	ErrDecode    = errors.New("unable to parse word list")
	ErrEmptyList = errors.New("word list is empty")
)

// maxListSize bounds how much of a remote or local word list is read.
const maxListSize = 32 << 20

// Load reads a word list from source, which is either empty (the embedded
// default), an http(s) URL, or a local file path. Files ending in .yaml or
// .yml are parsed as YAML, everything else as JSON.
func Load(ctx context.Context, source string, client *http.Client) (List, error) {
	var (
		data []byte
		err  error
	)

	name := source

	switch {
	case source == "":
		name = DefaultName
		data = defaultList
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		if u, perr := url.Parse(source); perr == nil {
			name = u.Path
		}
		data, err = fetch(ctx, source, client)
	default:
		data, err = readFile(source)
	}
	if err != nil {
		return nil, err
	}

	return Parse(name, data)
}

// Parse decodes data according to the extension of name and normalizes
// every entry.
func Parse(name string, data []byte) (List, error) {
	var list List

	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecode, name, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&list); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecode, name, err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s: unexpected data after word list", ErrDecode, name)
		}
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyList, name)
	}

	for i := range list {
		list[i].Word = Normalize(list[i].Word)
		list[i].Used = false
	}

	return list, nil
}

func fetch(ctx context.Context, location string, client *http.Client) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.1")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, location, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxListSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	return data, nil
}

func readFile(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxListSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	return data, nil
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package simbackend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/specialistvlad/deploygridgo/internal/fsutil"
)

// Artifact is a compiled contract.
type Artifact struct {
	Name     string
	ABI      abi.ABI
	Bytecode []byte
}

// artifactFile is the subset of a compiler output file we read. Both the
// Hardhat and the Foundry layouts are accepted.
type artifactFile struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
}

// decodeBytecode accepts a hex string or a Foundry {"object": "0x..."} value.
func decodeBytecode(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var hexStr string
	if err := json.Unmarshal(raw, &hexStr); err != nil {
		var obj struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("bytecode must be a hex string or an object with an 'object' field")
		}
		hexStr = obj.Object
	}
	if hexStr == "" || hexStr == "0x" {
		return nil, nil
	}
	if !strings.HasPrefix(hexStr, "0x") {
		hexStr = "0x" + hexStr
	}
	return hexutil.Decode(hexStr)
}

// LoadArtifact reads a compiled contract from path.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	var f artifactFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", path, err)
	}
	if len(f.ABI) == 0 {
		return nil, fmt.Errorf("artifact %s has no abi", path)
	}

	parsed, err := abi.JSON(bytes.NewReader(f.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse abi of %s: %w", path, err)
	}
	code, err := decodeBytecode(f.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bytecode of %s: %w", path, err)
	}

	name := f.ContractName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &Artifact{Name: name, ABI: parsed, Bytecode: code}, nil
}

// indexArtifacts maps artifact names to files below dir. A file's name
// without extension is the artifact name; the first file found wins.
func indexArtifacts(dir string) (map[string]string, error) {
	files, err := fsutil.FindFilesByExtension(dir, ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to scan artifacts directory %s: %w", dir, err)
	}
	index := make(map[string]string, len(files))
	for _, file := range files {
		// Hardhat writes debug files next to the artifacts.
		if strings.HasSuffix(file, ".dbg.json") {
			continue
		}
		name := strings.TrimSuffix(filepath.Base(file), ".json")
		if _, exists := index[name]; !exists {
			index[name] = file
		}
	}
	return index, nil
}

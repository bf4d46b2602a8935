package security

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	keySize = 32
	ivSize  = aes.BlockSize
)

var (
	ErrEmptySecret    = errors.New("secret cannot be empty")
	ErrInvalidPadding = errors.New("invalid padding")
)

// Encrypt шифрует текст AES-256-CBC ключом, выведенным из секрета, и кодирует в base64.
// Формат совместим с паролями, зашифрованными прежней версией сервиса.
func Encrypt(plaintext, secret string) (string, error) {
	block, iv, err := newCipher(secret)
	if err != nil {
		return "", err
	}

	padded := pad([]byte(plaintext))
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt расшифровывает значение, полученное Encrypt
func Decrypt(encoded, secret string) (string, error) {
	block, iv, err := newCipher(secret)
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("ciphertext length %d is not a multiple of the block size", len(data))
	}

	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)

	plain, err := unpad(out)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plain), nil
}

func newCipher(secret string) (cipher.Block, []byte, error) {
	if secret == "" {
		return nil, nil, ErrEmptySecret
	}
	key, iv := deriveKey([]byte(secret))
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return block, iv, nil
}

// deriveKey реализует EVP_BytesToKey с MD5, одной итерацией и без соли
func deriveKey(secret []byte) (key, iv []byte) {
	var derived, prev []byte
	for len(derived) < keySize+ivSize {
		h := md5.New()
		h.Write(prev)
		h.Write(secret)
		prev = h.Sum(nil)
		derived = append(derived, prev...)
	}
	return derived[:keySize], derived[keySize : keySize+ivSize]
}

func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrInvalidPadding
		}
	}
	return data[:len(data)-n], nil
}

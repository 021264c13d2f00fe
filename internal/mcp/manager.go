package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/siquick/web-agent/internal/config"
	"github.com/siquick/web-agent/internal/tool"
)

// Manager starts configured MCP servers and registers their tools with the
// agent's dispatcher.
type Manager struct {
	servers  map[string]*Client
	registry *tool.Registry
	mu       sync.RWMutex
}

func NewManager(registry *tool.Registry) *Manager {
	return &Manager{
		servers:  make(map[string]*Client),
		registry: registry,
	}
}

// Initialize starts all enabled servers from config. Servers start
// concurrently; a partial failure is reported but usable servers stay up.
func (m *Manager) Initialize(ctx context.Context, cfg config.MCPConfig) error {
	enabled := make([]config.MCPServerConfig, 0, len(cfg.Servers))
	for _, serverCfg := range cfg.Servers {
		if !serverCfg.Disabled {
			enabled = append(enabled, serverCfg)
		}
	}
	if len(enabled) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(enabled))
	started := make(chan string, len(enabled))

	for _, serverCfg := range enabled {
		wg.Add(1)
		go func(cfg config.MCPServerConfig) {
			defer wg.Done()
			if err := m.startServer(ctx, cfg); err != nil {
				errChan <- fmt.Errorf("server %s: %w", cfg.Name, err)
			} else {
				started <- cfg.Name
			}
		}(serverCfg)
	}

	wg.Wait()
	close(errChan)
	close(started)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	startedCount := len(enabled) - len(errs)

	if len(errs) > 0 && startedCount == 0 {
		return fmt.Errorf("all MCP servers failed to initialize: %v", errs)
	}
	if len(errs) > 0 {
		return fmt.Errorf("some MCP servers failed (loaded %d/%d): %v", startedCount, len(enabled), errs)
	}

	return nil
}

func (m *Manager) startServer(ctx context.Context, serverCfg config.MCPServerConfig) error {
	client, err := NewClient(ctx, serverCfg.Name, serverCfg.Command, serverCfg.Args, config.ExpandEnvMap(serverCfg.Env))
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, mcpTool := range client.Tools() {
		adapter := NewToolAdapter(client, mcpTool)
		if err := m.registry.Register(adapter); err != nil {
			client.Close()
			return fmt.Errorf("failed to register tool %s: %w", adapter.Name(), err)
		}
	}

	m.servers[serverCfg.Name] = client
	return nil
}

// Close shuts down all servers.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, client := range m.servers {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("server %s: %w", name, err))
		}
	}
	m.servers = make(map[string]*Client)

	if len(errs) > 0 {
		return fmt.Errorf("errors closing servers: %v", errs)
	}
	return nil
}

// ServerCount returns the number of active servers.
func (m *Manager) ServerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.servers)
}

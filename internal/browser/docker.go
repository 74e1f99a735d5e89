package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"
)

const chromeImage = "browserless/chrome:latest"

// DockerEngine launches the browser inside a browserless/chrome container.
// Used in deployed environments where no Chrome binary is installed on the
// host.
type DockerEngine struct {
	client *client.Client
	log    *zap.SugaredLogger
}

// NewDockerEngine connects to the local Docker daemon.
func NewDockerEngine(log *zap.SugaredLogger) (*DockerEngine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &DockerEngine{client: cli, log: log}, nil
}

// Launch pulls the Chrome image if needed, starts one container with a
// randomly bound CDP port, waits for the debugger to come up, and returns its
// control URL plus a stop func that removes the container.
func (e *DockerEngine) Launch(ctx context.Context) (string, func(), error) {
	if err := e.ensureImage(ctx); err != nil {
		return "", nil, err
	}

	containerConfig := &container.Config{
		Image: chromeImage,
		Labels: map[string]string{
			"managed-by": "cf-calendar-api",
		},
		Env: []string{
			"CONNECTION_TIMEOUT=-1",
			"MAX_CONCURRENT_SESSIONS=1",
			"PREBOOT_CHROME=true",
			"KEEP_ALIVE=true",
		},
		ExposedPorts: nat.PortSet{
			"3000/tcp": struct{}{},
		},
	}

	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			"3000/tcp": []nat.PortBinding{
				{HostIP: "0.0.0.0", HostPort: "0"},
			},
		},
	}

	resp, err := e.client.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, "cf-calendar-chrome")
	if err != nil {
		return "", nil, fmt.Errorf("create chrome container: %w", err)
	}

	stop := func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := e.stopContainer(stopCtx, resp.ID); err != nil {
			e.log.Warnw("failed to stop chrome container", "container_id", resp.ID, "error", err)
		}
	}

	if err := e.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		stop()
		return "", nil, fmt.Errorf("start chrome container: %w", err)
	}

	inspect, err := e.client.ContainerInspect(ctx, resp.ID)
	if err != nil {
		stop()
		return "", nil, fmt.Errorf("inspect chrome container: %w", err)
	}

	bindings := inspect.NetworkSettings.Ports["3000/tcp"]
	if len(bindings) == 0 {
		stop()
		return "", nil, fmt.Errorf("chrome container exposed no CDP port")
	}
	port := bindings[0].HostPort

	if err := e.waitForDebugger(ctx, port); err != nil {
		stop()
		return "", nil, err
	}

	controlURL, err := launcher.ResolveURL("http://localhost:" + port)
	if err != nil {
		stop()
		return "", nil, fmt.Errorf("resolve CDP endpoint: %w", err)
	}

	e.log.Infow("chrome container running", "container_id", resp.ID[:12], "port", port)
	return controlURL, stop, nil
}

func (e *DockerEngine) stopContainer(ctx context.Context, containerID string) error {
	timeout := 10
	if err := e.client.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("stop container: %w", err)
	}
	if err := e.client.ContainerRemove(ctx, containerID, container.RemoveOptions{}); err != nil {
		return fmt.Errorf("remove container: %w", err)
	}
	return nil
}

func (e *DockerEngine) ensureImage(ctx context.Context) error {
	images, err := e.client.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == chromeImage {
				return nil
			}
		}
	}

	e.log.Infow("pulling chrome image", "image", chromeImage)
	reader, err := e.client.ImagePull(ctx, chromeImage, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull %s: %w", chromeImage, err)
	}
	defer reader.Close()

	_, err = io.Copy(io.Discard, reader)
	return err
}

// waitForDebugger polls /json/version until the container's CDP endpoint
// answers.
func (e *DockerEngine) waitForDebugger(ctx context.Context, port string) error {
	url := fmt.Sprintf("http://localhost:%s/json/version", port)
	const maxProbes = 20

	for i := 0; i < maxProbes; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}

	return fmt.Errorf("chrome debugger did not come up on port %s", port)
}

// Close releases the Docker client.
func (e *DockerEngine) Close() error {
	return e.client.Close()
}
